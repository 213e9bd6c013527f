// Package lcd describes the LCD control and status registers.
package lcd

import (
	"github.com/thelolagemann/gbcore/pkg/bits"
)

// Controller is the decoded LCD control register. It controls various
// aspects of the LCD, such as enabling the background and window display.
//
// Its value is stored in the LCD Control Register (0xFF40) as follows:
//
//	Bit 7 - LCD Enable             (0=Off, 1=On)
//	Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 5 - Window Display Enable          (0=Off, 1=On)
//	Bit 4 - BG & Window Tile Data Select   (0=8800-97FF, 1=8000-8FFF)
//	Bit 3 - BG Tile Map Display Select     (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 2 - OBJ (Sprite) Size              (0=8x8, 1=8x16)
//	Bit 1 - OBJ (Sprite) Display Enable    (0=Off, 1=On)
//	Bit 0 - BG/Window Display/Priority     (0=Off, 1=On)
type Controller struct {
	// Enabled is the LCD Enable bit. When set, the LCD is enabled.
	Enabled bool
	// WindowTileMapAddress represents the Window Tile Map Display Select
	// bit, stored as the start address of the tile map.
	WindowTileMapAddress uint16
	// WindowEnabled is the Window Display Enable bit.
	WindowEnabled bool
	// TileDataAddress represents the BG & Window Tile Data Select bit,
	// stored as the start address of the tile data.
	//	(0=8800-97FF)
	//  (1=8000-8FFF)
	TileDataAddress uint16
	// BackgroundTileMapAddress represents the BG Tile Map Display Select
	// bit, stored as the start address of the tile map.
	BackgroundTileMapAddress uint16
	// SpriteSize is the height of sprites, 8 or 16.
	SpriteSize uint8
	// SpriteEnabled is the OBJ (Sprite) Display Enable bit.
	SpriteEnabled bool
	// BackgroundEnabled is the BG/Window Display/Priority bit.
	BackgroundEnabled bool
}

// NewController decodes the value of the LCD control register.
func NewController(value uint8) Controller {
	c := Controller{
		Enabled:                  bits.Test(value, 7),
		WindowTileMapAddress:     0x9800,
		WindowEnabled:            bits.Test(value, 5),
		TileDataAddress:          0x8800,
		BackgroundTileMapAddress: 0x9800,
		SpriteSize:               8 + bits.Val(value, 2)*8,
		SpriteEnabled:            bits.Test(value, 1),
		BackgroundEnabled:        bits.Test(value, 0),
	}
	if bits.Test(value, 6) {
		c.WindowTileMapAddress = 0x9C00
	}
	if bits.Test(value, 4) {
		c.TileDataAddress = 0x8000
	}
	if bits.Test(value, 3) {
		c.BackgroundTileMapAddress = 0x9C00
	}
	return c
}

// UsingSignedTileData returns true if tile indexes are signed, relative
// to 0x9000.
func (c Controller) UsingSignedTileData() bool {
	return c.TileDataAddress == 0x8800
}
