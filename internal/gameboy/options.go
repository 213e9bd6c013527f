package gameboy

import (
	"io"

	"github.com/thelolagemann/gbcore/internal/boot"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/internal/ppu/palette"
	"github.com/thelolagemann/gbcore/internal/serial"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// Opt is a function that modifies a GameBoy
// instance.
type Opt func(gb *GameBoy)

// Debug traces every executed instruction through the logger.
func Debug() Opt {
	return func(gb *GameBoy) {
		gb.CPU.Debug = true
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(l log.Logger) Opt {
	return func(gb *GameBoy) {
		if l == nil {
			l = log.NewNullLogger()
		}
		gb.Logger = l
	}
}

// WithListener registers the display sink.
func WithListener(l ppu.Listener) Opt {
	return func(gb *GameBoy) {
		gb.SetListener(l)
	}
}

// WithBootROM replaces the built-in boot overlay. It implies
// WithBootSequence, as there is no point in a boot ROM that
// is never executed.
func WithBootROM(rom *boot.ROM) Opt {
	return func(gb *GameBoy) {
		gb.MMU.SetOverlay(rom)
		gb.bootSequence = true
	}
}

// WithBootSequence executes the boot overlay before the game,
// instead of unmapping it as soon as the game is loaded.
func WithBootSequence() Opt {
	return func(gb *GameBoy) {
		gb.bootSequence = true
	}
}

// NoBoot starts execution at the post-boot entry point (0x0100), where
// commercial games expect to be entered, rather than at 0x0000.
func NoBoot() Opt {
	return func(gb *GameBoy) {
		gb.bootSequence = false
		gb.entry = PostBootEntry
	}
}

// WithSerialOutput writes every byte sent over the serial port to w.
func WithSerialOutput(w io.Writer) Opt {
	return func(gb *GameBoy) {
		gb.Serial.Output = w
	}
}

// WithSerialDevice attaches d to the serial port.
func WithSerialDevice(d serial.Device) Opt {
	return func(gb *GameBoy) {
		gb.Serial.Attach(d)
	}
}

// WithPalette sets the palette the DMG shades are drawn with.
func WithPalette(p palette.Palette) Opt {
	return func(gb *GameBoy) {
		gb.PPU.Palette = p
	}
}

// WithInput applies the buttons received on pressed and released
// between frames while running.
func WithInput(pressed, released <-chan joypad.Button) Opt {
	return func(gb *GameBoy) {
		gb.pressed = pressed
		gb.released = released
	}
}
