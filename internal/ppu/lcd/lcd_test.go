package lcd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestController(t *testing.T) {
	c := NewController(0x91)
	assert.True(t, c.Enabled)
	assert.False(t, c.WindowEnabled)
	assert.Equal(t, uint16(0x8000), c.TileDataAddress)
	assert.Equal(t, uint16(0x9800), c.BackgroundTileMapAddress)
	assert.Equal(t, uint8(8), c.SpriteSize)
	assert.True(t, c.BackgroundEnabled)
	assert.False(t, c.UsingSignedTileData())

	c = NewController(0x6C)
	assert.False(t, c.Enabled)
	assert.Equal(t, uint16(0x9C00), c.WindowTileMapAddress)
	assert.Equal(t, uint16(0x9C00), c.BackgroundTileMapAddress)
	assert.Equal(t, uint8(16), c.SpriteSize)
	assert.True(t, c.UsingSignedTileData())
}

func TestStatus(t *testing.T) {
	s := NewStatus(0x48)
	assert.True(t, s.CoincidenceInterrupt)
	assert.True(t, s.HBlankInterrupt)
	assert.True(t, s.InterruptEnabled(HBlank))
	assert.False(t, s.InterruptEnabled(VRAM))

	s.Mode = OAM
	s.Coincidence = true
	assert.Equal(t, uint8(0x80|0x48|0x04|0x02), s.Value())
}

func TestFrameCycles(t *testing.T) {
	assert.Equal(t, 114, LineCycles)
	assert.Equal(t, 17556, FrameCycles)
}
