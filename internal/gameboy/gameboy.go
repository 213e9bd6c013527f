// Package gameboy provides an emulation of a Nintendo Game Boy (DMG).
// A GameBoy composes the memory, the processor, the pixel processing
// unit and the smaller peripherals, and drives them one frame at a time.
package gameboy

import (
	"context"
	"errors"
	"fmt"

	"github.com/thelolagemann/gbcore/internal/cpu"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/loader"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/internal/serial"
	"github.com/thelolagemann/gbcore/internal/timer"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the Game Boy.
	ClockSpeed = cpu.ClockSpeed
	// CyclesPerFrame is the number of machine cycles per frame.
	CyclesPerFrame = 17556
	// FrameRate is the number of frames per second.
	FrameRate = float64(cpu.CycleSpeed) / CyclesPerFrame

	// PostBootEntry is where execution continues once the boot
	// sequence has completed.
	PostBootEntry uint16 = 0x0100
)

// ErrLoad is matched by every error returned from LoadGame.
var ErrLoad = errors.New("gameboy: load error")

// LoadError is returned when a game image could not be loaded. Memory
// is left untouched.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("gameboy: loading %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrLoad.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// GameBoy represents a Game Boy. It contains all the components of the Game Boy.
// It is the main entry point for the emulator.
type GameBoy struct {
	CPU *cpu.CPU
	MMU *mmu.MMU
	PPU *ppu.PPU

	Interrupts *interrupts.Service
	Joypad     *joypad.State
	Timer      *timer.Controller
	Serial     *serial.Controller

	log.Logger

	// peripherals are stepped after every instruction, in order
	peripherals []types.Peripheral

	// button changes from the display, applied between frames
	pressed, released <-chan joypad.Button

	bootSequence bool
	entry        uint16
	loaded       bool
}

// NewGameBoy returns a new GameBoy, powered on and waiting for a game.
func NewGameBoy(opts ...Opt) *GameBoy {
	memBus := mmu.NewMMU(nil, nil)
	irq := interrupts.NewService(memBus)
	video := ppu.NewPPU(memBus, irq)

	g := &GameBoy{
		CPU:        cpu.NewCPU(memBus, irq),
		MMU:        memBus,
		PPU:        video,
		Interrupts: irq,
		Joypad:     joypad.New(memBus, irq),
		Timer:      timer.NewController(memBus, irq),
		Serial:     serial.NewController(memBus, irq),
		Logger:     log.NewNullLogger(),
	}
	g.peripherals = []types.Peripheral{g.PPU, g.Timer, g.Serial}

	// video memory writes reach the PPU before anything runs
	memBus.SetObserver(video)

	for _, opt := range opts {
		opt(g)
	}

	g.MMU.Log = g.Logger
	g.CPU.SetLogger(g.Logger)
	g.Serial.Log = g.Logger

	g.Reset()
	return g
}

// Reset powers the Game Boy off and on again. Memory is cleared, so a
// game has to be loaded again.
func (g *GameBoy) Reset() {
	g.MMU.Reset()
	g.PPU.Reset()
	g.Timer.Reset()
	g.Joypad.Reset()
	g.Serial.Reset()
	g.CPU.Reset()
	g.loaded = false
}

// LoadGame loads the image provided by src at address 0x0000. Unless the
// boot sequence was requested the boot overlay is unmapped straight away
// and execution starts at the configured entry point, with the processor
// back in its power-on state. On failure a *LoadError is returned and
// memory is left untouched.
func (g *GameBoy) LoadGame(src loader.Source) error {
	image, err := src.Load()
	if err != nil {
		return &LoadError{Source: src.String(), Err: err}
	}
	if err := g.MMU.Load(0x0000, image); err != nil {
		return &LoadError{Source: src.String(), Err: err}
	}

	// a fault latched by the previous game must not stop this one
	g.CPU.Reset()
	if !g.bootSequence {
		g.MMU.SetSystemReady(true)
		g.CPU.PC = g.entry
	}
	g.loaded = true
	g.Infof("loaded %s (%d bytes)", src, len(image))

	return nil
}

// Loaded reports whether a game has been loaded since the last Reset.
func (g *GameBoy) Loaded() bool {
	return g.loaded
}

// SetListener registers l as the display sink, replacing the previous one.
func (g *GameBoy) SetListener(l ppu.Listener) {
	g.PPU.SetListener(l)
}

// Step executes a single instruction and advances every peripheral by
// the cycles it took.
func (g *GameBoy) Step() (uint8, error) {
	cycles, err := g.CPU.Step()
	if err != nil {
		return cycles, err
	}
	for _, p := range g.peripherals {
		p.Step(cycles)
	}
	return cycles, nil
}

// Frame will step the emulation until the PPU has finished
// rendering the current frame, and return it. A processor
// fault is returned as is.
func (g *GameBoy) Frame() (ppu.Frame, error) {
	g.PPU.ClearRefresh()
	// step until the next frame
	for !g.PPU.HasFrame() {
		if _, err := g.Step(); err != nil {
			return ppu.Frame{}, err
		}
	}

	return g.PPU.PreparedFrame, nil
}

// Run produces frames until ctx is cancelled, which is not an error,
// or until the processor faults. Button changes received through
// WithInput are applied between frames.
func (g *GameBoy) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			g.Debugf("stopped after %d frames", g.PPU.Frames())
			return nil
		default:
		}
		g.processInputs()

		if _, err := g.Frame(); err != nil {
			g.Errorf("emulation stopped: %v", err)
			return err
		}
	}
}

// processInputs applies every pending button change without blocking.
// Pending presses are applied before pending releases.
func (g *GameBoy) processInputs() {
	for {
		select {
		case b := <-g.pressed:
			g.Press(b)
			continue
		default:
		}
		select {
		case b := <-g.released:
			g.Release(b)
		default:
			return
		}
	}
}

// Press presses a button.
func (g *GameBoy) Press(button joypad.Button) {
	g.Joypad.Press(button)
}

// Release releases a button.
func (g *GameBoy) Release(button joypad.Button) {
	g.Joypad.Release(button)
}
