package gameboy

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gbcore/internal/boot"
	"github.com/thelolagemann/gbcore/internal/cpu"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/loader"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/internal/ppu/palette"
	"github.com/thelolagemann/gbcore/internal/serial"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// spin is a program that jumps to itself forever (JR -2).
var spin = []byte{0x18, 0xFE}

// serialHello sends "OK" over the serial port, then spins.
var serialHello = []byte{
	0x3E, 'O', // LD A, 'O'
	0xE0, 0x01, // LDH (SB), A
	0x3E, 0x81, // LD A, $81
	0xE0, 0x02, // LDH (SC), A
	0xF0, 0x02, // LDH A, (SC)
	0xCB, 0x7F, // BIT 7, A
	0x20, 0xFA, // JR NZ, -6
	0x3E, 'K', // LD A, 'K'
	0xE0, 0x01, // LDH (SB), A
	0x3E, 0x81, // LD A, $81
	0xE0, 0x02, // LDH (SC), A
	0x18, 0xFE, // JR -2
}

type sourceMock struct {
	mock.Mock
}

func (s *sourceMock) Load() ([]byte, error) {
	args := s.Called()
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (s *sourceMock) String() string {
	return "mock"
}

func newLoadedGameBoy(t *testing.T, image []byte, opts ...Opt) *GameBoy {
	g := NewGameBoy(opts...)
	require.NoError(t, g.LoadGame(loader.NewBytesSource("test.gb", image)))
	return g
}

func TestGameBoy_LoadGame(t *testing.T) {
	g := newLoadedGameBoy(t, spin)
	assert.True(t, g.Loaded())
	assert.True(t, g.MMU.SystemReady())
	assert.Equal(t, uint16(0x0000), g.CPU.PC)
	assert.Equal(t, uint8(0x18), g.MMU.Read(0x0000))
	assert.Equal(t, uint8(0xFE), g.MMU.Read(0x0001))

	t.Run("no boot", func(t *testing.T) {
		g := newLoadedGameBoy(t, spin, NoBoot())
		assert.Equal(t, PostBootEntry, g.CPU.PC)
	})
	t.Run("boot sequence", func(t *testing.T) {
		g := newLoadedGameBoy(t, spin, WithBootSequence())
		assert.False(t, g.MMU.SystemReady())
		assert.Equal(t, boot.Default().Read(0), g.MMU.Read(0))
	})
	t.Run("logs", func(t *testing.T) {
		buf := &bytes.Buffer{}
		newLoadedGameBoy(t, spin, WithLogger(log.NewWithWriter(buf, false)))
		assert.Contains(t, buf.String(), "loaded test.gb (2 bytes)")
	})
	t.Run("nil logger", func(t *testing.T) {
		var g *GameBoy
		require.NotPanics(t, func() {
			g = newLoadedGameBoy(t, spin, WithLogger(nil))
		})
		assert.NotNil(t, g.Logger)
		_, err := g.Frame()
		assert.NoError(t, err)
	})
	t.Run("clears a fault", func(t *testing.T) {
		g := newLoadedGameBoy(t, []byte{0xD3})
		_, err := g.Frame()
		require.ErrorIs(t, err, cpu.ErrUnimplementedOpcode)

		require.NoError(t, g.LoadGame(loader.NewBytesSource("test.gb", spin)))
		_, err = g.Frame()
		assert.NoError(t, err)
		assert.Equal(t, uint16(0x0000), g.CPU.PC)
	})
}

func TestFrameRate(t *testing.T) {
	assert.InDelta(t, 59.73, FrameRate, 0.01)
}

func TestGameBoy_LoadError(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		source loader.Source
		target error
	}{
		{"source", func() loader.Source {
			s := &sourceMock{}
			s.On("Load").Return(nil, boom).Once()
			return s
		}(), boom},
		{"empty", loader.NewBytesSource("empty.gb", nil), loader.ErrEmptyImage},
		{"missing", loader.NewFileSource("testdata/missing.gb"), nil},
		{"too large", loader.NewBytesSource("big.gb", make([]byte, 0x8001)), mmu.ErrImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newLoadedGameBoy(t, spin)
			err := g.LoadGame(tt.source)
			require.Error(t, err)

			assert.ErrorIs(t, err, ErrLoad)
			assert.NotErrorIs(t, err, cpu.ErrUnimplementedOpcode)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.source.String(), loadErr.Source)

			// memory is untouched
			assert.Equal(t, uint8(0x18), g.MMU.Read(0x0000))
			assert.Equal(t, uint8(0xFE), g.MMU.Read(0x0001))
			assert.Equal(t, uint8(0x00), g.MMU.Read(0x0002))
		})
	}
}

func TestGameBoy_FrameCadence(t *testing.T) {
	g := newLoadedGameBoy(t, spin)

	// JR takes 3 cycles, so a frame may overshoot by at most 2
	for i := uint64(1); i <= 5; i++ {
		_, err := g.Frame()
		require.NoError(t, err)

		assert.GreaterOrEqual(t, g.CPU.Cycles(), i*CyclesPerFrame)
		assert.Less(t, g.CPU.Cycles(), i*CyclesPerFrame+3)
		assert.Equal(t, i, g.PPU.Frames())
	}
}

func TestGameBoy_Listener(t *testing.T) {
	var frames []ppu.Frame
	g := newLoadedGameBoy(t, spin, WithListener(ppu.ListenerFunc(func(f ppu.Frame) {
		frames = append(frames, f)
	})))

	frame, err := g.Frame()
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, frame, frames[0])

	// LCD is off, so the frame is blank
	white := palette.Palettes[palette.Greyscale].Colors[0]
	assert.Equal(t, white, frame[0][0])
	assert.Equal(t, white, frame[ppu.ScreenHeight-1][ppu.ScreenWidth-1])
}

func TestGameBoy_Serial(t *testing.T) {
	out := &bytes.Buffer{}
	g := newLoadedGameBoy(t, serialHello, WithSerialOutput(out))

	_, err := g.Frame()
	require.NoError(t, err)
	assert.Equal(t, "OK", out.String())
	assert.NotZero(t, g.MMU.Read(types.IF)&0x08, "serial interrupt requested")
}

func TestGameBoy_Fault(t *testing.T) {
	// NOP, NOP, illegal
	g := newLoadedGameBoy(t, []byte{0x00, 0x00, 0xD3})

	_, err := g.Frame()
	require.Error(t, err)
	assert.ErrorIs(t, err, cpu.ErrUnimplementedOpcode)
	assert.NotErrorIs(t, err, ErrLoad)

	var opErr *cpu.OpcodeError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, uint8(0xD3), opErr.Opcode)
	assert.Equal(t, uint16(0x0002), opErr.PC)

	// no further progress
	cycles := g.CPU.Cycles()
	_, again := g.Frame()
	assert.Equal(t, err, again)
	assert.Equal(t, cycles, g.CPU.Cycles())

	assert.Equal(t, err, g.Run(context.Background()))
}

func TestGameBoy_Run(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		g := newLoadedGameBoy(t, spin)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, g.Run(ctx))
		assert.Zero(t, g.PPU.Frames())
	})
	t.Run("stops between frames", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		count := 0
		g := newLoadedGameBoy(t, spin, WithListener(ppu.ListenerFunc(func(ppu.Frame) {
			if count++; count == 3 {
				cancel()
			}
		})))

		assert.NoError(t, g.Run(ctx))
		assert.Equal(t, 3, count)
		assert.Equal(t, uint64(3), g.PPU.Frames())
	})
	t.Run("input", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pressed := make(chan joypad.Button, 2)
		released := make(chan joypad.Button, 2)
		pressed <- joypad.ButtonA
		pressed <- joypad.ButtonUp
		released <- joypad.ButtonUp

		g := newLoadedGameBoy(t, spin, WithInput(pressed, released), WithListener(ppu.ListenerFunc(func(ppu.Frame) {
			cancel()
		})))

		assert.NoError(t, g.Run(ctx))
		assert.True(t, g.Joypad.Pressed(joypad.ButtonA))
		assert.False(t, g.Joypad.Pressed(joypad.ButtonUp))
	})
}

func TestGameBoy_BootSequence(t *testing.T) {
	image := make([]byte, 0x102)
	copy(image, spin)
	copy(image[PostBootEntry:], spin)
	g := newLoadedGameBoy(t, image, WithBootSequence())

	for i := 0; i < 10 && !g.MMU.SystemReady(); i++ {
		_, err := g.Frame()
		require.NoError(t, err)
	}
	require.True(t, g.MMU.SystemReady(), "overlay unmapped itself")

	assert.GreaterOrEqual(t, g.CPU.PC, PostBootEntry)
	assert.Less(t, g.CPU.PC, PostBootEntry+2)
	assert.Equal(t, uint8(0x01), g.CPU.A)
	assert.Equal(t, uint16(0xFFFE), g.CPU.SP)
	assert.Equal(t, uint8(0xFC), g.MMU.Read(types.BGP))
	assert.Equal(t, uint8(0x91), g.MMU.Read(types.LCDC))
	assert.Equal(t, uint8(0x18), g.MMU.Read(0x0000), "image visible below 0x100")

	t.Run("custom boot rom", func(t *testing.T) {
		raw := make([]byte, boot.Size)
		// LD A, $01; LDH (BDIS), A; then fall through NOPs to 0x0100
		copy(raw, []byte{0x3E, 0x01, 0xE0, 0x50})
		rom, err := boot.LoadBootROM(raw)
		require.NoError(t, err)

		g := newLoadedGameBoy(t, image, WithBootROM(rom))
		assert.Equal(t, uint8(0x3E), g.MMU.Read(0x0000))
		_, err = g.Frame()
		require.NoError(t, err)
		assert.True(t, g.MMU.SystemReady())
	})
}

func TestGameBoy_Options(t *testing.T) {
	green, err := palette.ByName("green")
	require.NoError(t, err)

	loop := serial.NewLoopback()
	g := NewGameBoy(Debug(), WithPalette(green), WithSerialDevice(loop))
	assert.True(t, g.CPU.Debug)
	assert.Equal(t, green, g.PPU.Palette)
	assert.Equal(t, loop, g.Serial.AttachedDevice)
	assert.False(t, g.Loaded())

	g.Press(joypad.ButtonStart)
	assert.True(t, g.Joypad.Pressed(joypad.ButtonStart))
	g.Release(joypad.ButtonStart)
	assert.False(t, g.Joypad.Pressed(joypad.ButtonStart))
}
