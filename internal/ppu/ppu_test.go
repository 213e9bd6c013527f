package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/ppu/lcd"
	"github.com/thelolagemann/gbcore/internal/ppu/palette"
	"github.com/thelolagemann/gbcore/internal/types"
)

func newTestPPU() (*PPU, *mmu.MMU) {
	m := mmu.NewMMU(nil, nil)
	m.SetSystemReady(true)
	p := NewPPU(m, interrupts.NewService(m))
	m.SetObserver(p)
	return p, m
}

type frameRecorder struct {
	frames []Frame
	writes int
}

func (r *frameRecorder) OnFrame(frame Frame) {
	r.frames = append(r.frames, frame)
}

func (r *frameRecorder) OnVRAMWrite(uint16, uint8) {
	r.writes++
}

func TestPPU_Modes(t *testing.T) {
	p, m := newTestPPU()

	type transition struct {
		cycle int
		mode  lcd.Mode
		ly    uint8
	}
	var transitions []transition
	mode, ly := p.Mode(), p.LY()
	for cycle := 1; cycle <= lcd.FrameCycles; cycle++ {
		p.Tick(1)
		if p.Mode() != mode || p.LY() != ly {
			mode, ly = p.Mode(), p.LY()
			transitions = append(transitions, transition{cycle, mode, ly})
		}
	}

	require.True(t, len(transitions) > 4)
	assert.Equal(t, transition{20, lcd.VRAM, 0}, transitions[0])
	assert.Equal(t, transition{63, lcd.HBlank, 0}, transitions[1])
	assert.Equal(t, transition{114, lcd.OAM, 1}, transitions[2])
	assert.Equal(t, transition{134, lcd.VRAM, 1}, transitions[3])

	// 144 visible lines of 3 transitions, then 10 lines of VBlank
	vblank := transitions[144*3-1]
	assert.Equal(t, transition{144 * 114, lcd.VBlank, 144}, vblank)
	last := transitions[len(transitions)-1]
	assert.Equal(t, transition{lcd.FrameCycles, lcd.OAM, 0}, last)

	assert.True(t, p.HasFrame())
	assert.Equal(t, uint64(1), p.Frames())
	assert.NotZero(t, m.Read(types.IF)&interrupts.VBlankFlag)
}

func TestPPU_Remainder(t *testing.T) {
	p, _ := newTestPPU()
	p.Tick(25)
	assert.Equal(t, lcd.VRAM, p.Mode())
	p.Tick(37)
	assert.Equal(t, lcd.VRAM, p.Mode())
	p.Tick(1)
	assert.Equal(t, lcd.HBlank, p.Mode())

	// a large step crosses several modes at once
	p.Tick(255)
	p.Tick(255)
	p.Tick(175) // 63 + 685 = 748 = 6 lines + 64
	assert.Equal(t, uint8(6), p.LY())
	assert.Equal(t, lcd.HBlank, p.Mode())
}

func TestPPU_Frame(t *testing.T) {
	p, _ := newTestPPU()
	rec := &frameRecorder{}
	p.SetListener(rec)

	for i := 0; i < lcd.FrameCycles-1; i++ {
		p.Tick(1)
	}
	assert.False(t, p.HasFrame())
	assert.Empty(t, rec.frames)

	p.Tick(1)
	assert.True(t, p.HasFrame())
	require.Len(t, rec.frames, 1)

	p.ClearRefresh()
	assert.False(t, p.HasFrame())

	for i := 0; i < lcd.FrameCycles; i++ {
		p.Tick(1)
	}
	assert.Len(t, rec.frames, 2)
}

func TestPPU_Registers(t *testing.T) {
	p, m := newTestPPU()
	m.Write(types.LYC, 2)
	m.Write(types.STAT, 0x40) // LYC interrupt
	assert.Equal(t, uint8(0x80|0x40|lcd.OAM), m.Read(types.STAT))

	p.Tick(114)
	assert.Equal(t, uint8(1), m.Read(types.LY))
	assert.Zero(t, m.Read(types.STAT)&types.Bit2)

	p.Tick(114)
	assert.Equal(t, uint8(2), m.Read(types.LY))
	assert.NotZero(t, m.Read(types.STAT)&types.Bit2)
	assert.NotZero(t, m.Read(types.IF)&interrupts.LCDFlag)

	m.Write(types.LY, 99)
	assert.Equal(t, uint8(2), m.Read(types.LY), "LY is read only")
}

func TestPPU_STATModeInterrupts(t *testing.T) {
	tick := func(p *PPU, cycles int) {
		for i := 0; i < cycles; i++ {
			p.Tick(1)
		}
	}

	for _, tt := range []struct {
		name   string
		enable uint8
		cycles int // until the mode is entered
	}{
		{"HBlank", types.Bit3, lcd.OAMCycles + lcd.VRAMCycles},
		{"VBlank", types.Bit4, lcd.VisibleLines * lcd.LineCycles},
		{"OAM", types.Bit5, lcd.LineCycles},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p, m := newTestPPU()
			m.Write(types.STAT, tt.enable)

			tick(p, tt.cycles-1)
			assert.Zero(t, m.Read(types.IF)&interrupts.LCDFlag, "raised early")

			tick(p, 1)
			assert.NotZero(t, m.Read(types.IF)&interrupts.LCDFlag)
		})
	}

	t.Run("disabled", func(t *testing.T) {
		p, m := newTestPPU()
		m.Write(types.STAT, 0)
		tick(p, lcd.FrameCycles)
		assert.Zero(t, m.Read(types.IF)&interrupts.LCDFlag)
		assert.NotZero(t, m.Read(types.IF)&interrupts.VBlankFlag)
	})
}

func TestPPU_Tiles(t *testing.T) {
	p, m := newTestPPU()
	rec := &frameRecorder{}
	p.SetListener(rec)

	m.Write(0x8000, 0x3C)
	m.Write(0x8001, 0x7E)
	assert.Equal(t, [8]uint8{0, 2, 3, 3, 3, 3, 2, 0}, p.Tile(0)[0])

	// last row of the last tile
	m.Write(0x97FE, 0xFF)
	assert.Equal(t, [8]uint8{1, 1, 1, 1, 1, 1, 1, 1}, p.Tile(383)[7])

	// tile maps are not tile data
	m.Write(0x9800, 0xFF)
	assert.Equal(t, 4, rec.writes)
}

// fill writes value to every byte of the tile data for tile.
func fill(m *mmu.MMU, tile int, lo, hi uint8) {
	for i := 0; i < 8; i++ {
		m.Write(0x8000+uint16(tile)*16+uint16(i)*2, lo)
		m.Write(0x8000+uint16(tile)*16+uint16(i)*2+1, hi)
	}
}

func runFrame(p *PPU) Frame {
	for !p.HasFrame() {
		p.Tick(4)
	}
	p.ClearRefresh()
	return p.PreparedFrame
}

func TestPPU_Render(t *testing.T) {
	grey := palette.Palettes[palette.Greyscale]

	t.Run("background", func(t *testing.T) {
		p, m := newTestPPU()
		m.Write(types.LCDC, 0x91)
		m.Write(types.BGP, 0xE4)
		fill(m, 0, 0xFF, 0xFF)

		frame := runFrame(p)
		assert.Equal(t, grey.Colors[3], frame[0][0])
		assert.Equal(t, grey.Colors[3], frame[143][159])
	})
	t.Run("lcd disabled", func(t *testing.T) {
		p, m := newTestPPU()
		m.Write(types.LCDC, 0x11)
		m.Write(types.BGP, 0xE4)
		fill(m, 0, 0xFF, 0xFF)

		frame := runFrame(p)
		assert.Equal(t, grey.Colors[0], frame[72][80])
	})
	t.Run("signed tile data", func(t *testing.T) {
		p, m := newTestPPU()
		m.Write(types.LCDC, 0x81)
		m.Write(types.BGP, 0xE4)
		// tile 0 in signed mode lives at 0x9000, tile 256
		fill(m, 256, 0xFF, 0x00)

		frame := runFrame(p)
		assert.Equal(t, grey.Colors[1], frame[10][10])
	})
	t.Run("scroll", func(t *testing.T) {
		p, m := newTestPPU()
		m.Write(types.LCDC, 0x91)
		m.Write(types.BGP, 0xE4)
		fill(m, 1, 0xFF, 0xFF)
		m.Write(0x9800+1, 1) // second tile of the first row
		m.Write(types.SCX, 8)

		frame := runFrame(p)
		assert.Equal(t, grey.Colors[3], frame[0][0])
		assert.Equal(t, grey.Colors[0], frame[0][8])
	})
	t.Run("window", func(t *testing.T) {
		p, m := newTestPPU()
		m.Write(types.LCDC, 0xF1) // window map at 0x9C00
		m.Write(types.BGP, 0xE4)
		fill(m, 2, 0x00, 0xFF)
		for i := uint16(0); i < 0x400; i++ {
			m.Write(0x9C00+i, 2)
		}
		m.Write(types.WY, 100)
		m.Write(types.WX, 7+80)

		frame := runFrame(p)
		assert.Equal(t, grey.Colors[0], frame[99][100])
		assert.Equal(t, grey.Colors[0], frame[120][79])
		assert.Equal(t, grey.Colors[2], frame[120][80])
	})
	t.Run("sprites", func(t *testing.T) {
		p, m := newTestPPU()
		m.Write(types.LCDC, 0x93)
		m.Write(types.BGP, 0xE4)
		m.Write(types.OBP0, 0xE4)
		m.Write(types.OBP1, 0x00)
		fill(m, 5, 0xFF, 0xFF)

		// sprite 0 at (8, 16) using OBP0, sprite 1 at (32, 32) using OBP1
		for i, b := range []uint8{32, 16, 5, 0x00, 48, 40, 5, 0x10} {
			m.Write(types.OAMStart+uint16(i), b)
		}

		frame := runFrame(p)
		assert.Equal(t, grey.Colors[3], frame[16][8])
		assert.Equal(t, grey.Colors[3], frame[23][15])
		assert.Equal(t, grey.Colors[0], frame[16][16])
		// OBP1 maps every shade to white
		assert.Equal(t, grey.Colors[0], frame[32][32])
	})
}

func TestFrame(t *testing.T) {
	var a, b Frame
	assert.Equal(t, a.Hash(), b.Hash())

	b[10][10] = [3]uint8{1, 2, 3}
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Len(t, b.Bytes(), ScreenWidth*ScreenHeight*3)

	img := b.Image()
	assert.Equal(t, ScreenWidth, img.Bounds().Dx())
	r, g, bl, _ := img.At(10, 10).RGBA()
	assert.Equal(t, []uint32{1, 2, 3}, []uint32{r >> 8, g >> 8, bl >> 8})
}
