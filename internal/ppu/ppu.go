// Package ppu implements the Game Boy's (P)ixel (P)rocessing (U)nit.
// The PPU mirrors video memory through write notifications, advances
// its mode machine by the cycles the CPU reports and hands a completed
// Frame to its Listener once per frame.
//
// References:
//   - [Pan Docs](https://gbdev.io/pandocs/Graphics.html)
//   - [Hacktix GBEDG](https://hacktix.github.io/GBEDG/ppu/)
package ppu

import (
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/ppu/lcd"
	"github.com/thelolagemann/gbcore/internal/ppu/palette"
	"github.com/thelolagemann/gbcore/internal/types"
)

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144
)

// Bus is the view of memory the PPU needs. Set stores without
// triggering write hooks, Reserve installs a hook for CPU writes.
type Bus interface {
	Read(address uint16) uint8
	Set(address uint16, value uint8)
	Reserve(address uint16, hook mmu.WriteHook)
}

// Listener receives every completed frame. Frames are delivered by
// value, so the listener may keep them.
type Listener interface {
	OnFrame(frame Frame)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(frame Frame)

// OnFrame calls f(frame).
func (f ListenerFunc) OnFrame(frame Frame) {
	f(frame)
}

// VRAMListener is optionally implemented by a Listener that wants the
// video memory writes forwarded to it.
type VRAMListener interface {
	OnVRAMWrite(address uint16, value uint8)
}

type nopListener struct{}

func (nopListener) OnFrame(Frame)              {}
func (nopListener) OnVRAMWrite(uint16, uint8) {}

// PPU implements the Game Boy's (P)ixel (P)rocessing (U)nit.
type PPU struct {
	bus Bus
	irq *interrupts.Service

	listener     Listener
	vramListener VRAMListener

	// Video memory mirror, with the tile data decoded as it is written
	vram  [types.VRAMEnd - types.VRAMStart]uint8
	tiles [tileCount]Tile

	// Rendering state
	mode       lcd.Mode // Current mode, reported to the STAT register
	ly         uint8    // Current line (0-153)
	counter    uint16   // Cycles spent in the current mode
	windowLine uint8    // Window line counter

	// Palette is the base palette the DMG shades are mapped onto.
	Palette palette.Palette

	// Frame buffers
	working       Frame
	bgIndex       [ScreenWidth]uint8
	sprites       []Sprite
	PreparedFrame Frame

	refresh bool
	frames  uint64
}

// NewPPU returns a new PPU, drawing into memory through bus and
// requesting interrupts through irq.
func NewPPU(bus Bus, irq *interrupts.Service) *PPU {
	p := &PPU{
		bus:          bus,
		irq:          irq,
		listener:     nopListener{},
		vramListener: nopListener{},
		Palette:      palette.Palettes[palette.Greyscale],
		sprites:      make([]Sprite, 0, maxSpritesPerLine),
	}

	// LY is read only
	bus.Reserve(types.LY, func(uint8) uint8 {
		return p.ly
	})
	// the mode and coincidence bits of STAT are read only
	bus.Reserve(types.STAT, func(v uint8) uint8 {
		return v&0x78 | p.bus.Read(types.STAT)&0x07 | 0x80
	})
	bus.Reserve(types.LYC, func(v uint8) uint8 {
		p.compareLY(v)
		return v
	})

	p.Reset()
	return p
}

// Reset clears video memory and restarts the PPU at the OAM scan of line 0.
func (p *PPU) Reset() {
	p.vram = [len(p.vram)]uint8{}
	p.tiles = [tileCount]Tile{}
	p.working = Frame{}
	p.PreparedFrame = Frame{}
	p.counter = 0
	p.windowLine = 0
	p.refresh = false
	p.frames = 0

	p.mode = lcd.OAM
	p.setLY(0)
}

// SetListener registers l as the frame listener, replacing the previous
// one. If l implements VRAMListener, video memory writes are forwarded
// to it as well.
func (p *PPU) SetListener(l Listener) {
	if l == nil {
		l = nopListener{}
	}
	p.listener = l
	p.vramListener = nopListener{}
	if v, ok := l.(VRAMListener); ok {
		p.vramListener = v
	}
}

// OnVRAMWrite updates the video memory mirror, decoding the affected
// tile row immediately.
func (p *PPU) OnVRAMWrite(address uint16, value uint8) {
	offset := address - types.VRAMStart
	p.vram[offset] = value
	if address < types.TileDataEnd {
		row := offset &^ 1
		p.tiles[offset/16].setRow(int(offset%16/2), p.vram[row], p.vram[row+1])
	}
	p.vramListener.OnVRAMWrite(address, value)
}

// Tick advances the PPU by the given number of machine cycles,
// transitioning through as many modes as the cycles cover.
func (p *PPU) Tick(cycles uint8) {
	p.counter += uint16(cycles)
	for budget := lcd.Cycles(p.mode); p.counter >= budget; budget = lcd.Cycles(p.mode) {
		p.counter -= budget
		p.advance()
	}
}

// Step implements types.Peripheral.
func (p *PPU) Step(cycles uint8) {
	p.Tick(cycles)
}

func (p *PPU) advance() {
	switch p.mode {
	case lcd.OAM:
		p.setMode(lcd.VRAM)
	case lcd.VRAM:
		p.renderScanline()
		p.setMode(lcd.HBlank)
	case lcd.HBlank:
		p.setLY(p.ly + 1)
		if p.ly == lcd.VisibleLines {
			p.setMode(lcd.VBlank)
			p.irq.Request(interrupts.VBlankFlag)
		} else {
			p.setMode(lcd.OAM)
		}
	case lcd.VBlank:
		if p.ly == lcd.VisibleLines+lcd.VBlankLines-1 {
			p.completeFrame()
			p.windowLine = 0
			p.setLY(0)
			p.setMode(lcd.OAM)
		} else {
			p.setLY(p.ly + 1)
		}
	}
}

// completeFrame publishes the working buffer.
func (p *PPU) completeFrame() {
	p.PreparedFrame = p.working
	p.refresh = true
	p.frames++
	p.listener.OnFrame(p.PreparedFrame)
}

func (p *PPU) setMode(mode lcd.Mode) {
	p.mode = mode
	status := lcd.NewStatus(p.bus.Read(types.STAT))
	status.Mode = mode
	p.bus.Set(types.STAT, status.Value())

	if status.InterruptEnabled(mode) {
		p.irq.Request(interrupts.LCDFlag)
	}
}

func (p *PPU) setLY(ly uint8) {
	p.ly = ly
	p.bus.Set(types.LY, ly)
	p.compareLY(p.bus.Read(types.LYC))
}

// compareLY updates the coincidence flag, requesting a STAT interrupt
// when LY matches lyc and the interrupt is enabled.
func (p *PPU) compareLY(lyc uint8) {
	status := lcd.NewStatus(p.bus.Read(types.STAT))
	status.Mode = p.mode
	status.Coincidence = p.ly == lyc
	p.bus.Set(types.STAT, status.Value())

	if status.Coincidence && status.CoincidenceInterrupt {
		p.irq.Request(interrupts.LCDFlag)
	}
}

// HasFrame reports whether a frame has completed since ClearRefresh.
func (p *PPU) HasFrame() bool {
	return p.refresh
}

// ClearRefresh clears the frame completion flag.
func (p *PPU) ClearRefresh() {
	p.refresh = false
}

// Mode returns the current mode.
func (p *PPU) Mode() lcd.Mode {
	return p.mode
}

// LY returns the current line.
func (p *PPU) LY() uint8 {
	return p.ly
}

// Frames returns the number of frames completed since Reset.
func (p *PPU) Frames() uint64 {
	return p.frames
}

// Tile returns the decoded tile at index (0-383).
func (p *PPU) Tile(index int) Tile {
	return p.tiles[index]
}
