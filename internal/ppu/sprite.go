package ppu

import (
	"sort"

	"github.com/thelolagemann/gbcore/internal/types"
)

// maxSpritesPerLine is the number of sprites the OAM scan selects per line.
const maxSpritesPerLine = 10

// Sprite is a decoded entry of the sprite attribute table.
type Sprite struct {
	// Y is the vertical position of the sprite plus 16.
	Y uint8
	// X is the horizontal position of the sprite plus 8.
	X uint8
	// TileID is the tile number, always unsigned from 0x8000.
	TileID uint8
	// Bit 7 - OBJ-to-BG priority (0=OBJ Above BG, 1=OBJ Behind BG color 1-3)
	behind bool
	// Bit 6 - Y flip          (0=Normal, 1=Vertically mirrored)
	flipY bool
	// Bit 5 - X flip          (0=Normal, 1=Horizontally mirrored)
	flipX bool
	// Bit 4 - Palette number  (0=OBP0, 1=OBP1)
	useSecondPalette bool

	index int
}

// NewSprite decodes the 4 attribute bytes of the sprite at index.
func NewSprite(index int, b [4]uint8) Sprite {
	return Sprite{
		Y:                b[0],
		X:                b[1],
		TileID:           b[2],
		behind:           b[3]&types.Bit7 != 0,
		flipY:            b[3]&types.Bit6 != 0,
		flipX:            b[3]&types.Bit5 != 0,
		useSecondPalette: b[3]&types.Bit4 != 0,
		index:            index,
	}
}

// scanOAM returns the sprites that intersect line ly, at most
// maxSpritesPerLine of them in OAM order, then sorted by drawing
// priority: the sprite with the smallest X wins, ties are broken by
// OAM order.
func (p *PPU) scanOAM(ly uint8, height uint8) []Sprite {
	sprites := p.sprites[:0]
	for i := 0; i < 40 && len(sprites) < maxSpritesPerLine; i++ {
		address := types.OAMStart + uint16(i)*4
		y := int(p.bus.Read(address)) - 16
		if int(ly) < y || int(ly) >= y+int(height) {
			continue
		}
		sprites = append(sprites, NewSprite(i, [4]uint8{
			p.bus.Read(address),
			p.bus.Read(address + 1),
			p.bus.Read(address + 2),
			p.bus.Read(address + 3),
		}))
	}

	sort.SliceStable(sprites, func(i, j int) bool {
		return sprites[i].X < sprites[j].X
	})
	p.sprites = sprites
	return sprites
}
