package ppu

// Tile represents a tile. Each tile has a size of 8x8 pixels and a color
// depth of 4 colors/gray shades. Tiles can be displayed as sprites or as
// background/window tiles.
type Tile [8][8]uint8

// tileCount is the number of tiles in the tile data region of VRAM.
const tileCount = 384

// setRow decodes a single row of the tile. The low byte holds bit 0 of
// each pixel, the high byte bit 1, with the leftmost pixel in bit 7.
func (t *Tile) setRow(tileY int, lo, hi uint8) {
	for tileX := 0; tileX < 8; tileX++ {
		t[tileY][tileX] = (lo>>(7-tileX))&1 | ((hi>>(7-tileX))&1)<<1
	}
}

// tileIndex resolves a tile number read from a tile map into an index
// into the decoded tiles. With signed addressing, numbers are relative
// to tile 256 (0x9000).
func tileIndex(number uint8, signed bool) int {
	if signed {
		return 256 + int(int8(number))
	}
	return int(number)
}
