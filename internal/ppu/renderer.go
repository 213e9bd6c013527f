package ppu

import (
	"github.com/thelolagemann/gbcore/internal/ppu/lcd"
	"github.com/thelolagemann/gbcore/internal/ppu/palette"
	"github.com/thelolagemann/gbcore/internal/types"
)

// renderScanline draws the current line into the working buffer. The
// background is drawn first, then the window over it, then the sprites.
func (p *PPU) renderScanline() {
	line := &p.working[p.ly]
	control := lcd.NewController(p.bus.Read(types.LCDC))

	if !control.Enabled {
		blank := p.Palette.GetColour(0)
		for x := range line {
			line[x] = blank
		}
		return
	}

	bgp := palette.ByteToPalette(p.Palette, p.bus.Read(types.BGP))
	if control.BackgroundEnabled {
		p.renderBackground(line, control, bgp)
		p.renderWindow(line, control, bgp)
	} else {
		// with the background disabled, sprites are drawn over white
		blank := p.Palette.GetColour(0)
		for x := range line {
			line[x] = blank
			p.bgIndex[x] = 0
		}
	}

	if control.SpriteEnabled {
		p.renderSprites(line, control)
	}
}

// mapTile returns the tile referenced by the tile map at mapAddress for
// the tile column and row given in tiles.
func (p *PPU) mapTile(control lcd.Controller, mapAddress uint16, column, row uint8) *Tile {
	number := p.vram[mapAddress-types.VRAMStart+uint16(row)*32+uint16(column)]
	return &p.tiles[tileIndex(number, control.UsingSignedTileData())]
}

func (p *PPU) renderBackground(line *[ScreenWidth][3]uint8, control lcd.Controller, bgp palette.Palette) {
	y := p.ly + p.bus.Read(types.SCY)
	scx := p.bus.Read(types.SCX)

	for x := 0; x < ScreenWidth; x++ {
		px := uint8(x) + scx
		tile := p.mapTile(control, control.BackgroundTileMapAddress, px/8, y/8)

		colour := tile[y%8][px%8]
		p.bgIndex[x] = colour
		line[x] = bgp.GetColour(colour)
	}
}

func (p *PPU) renderWindow(line *[ScreenWidth][3]uint8, control lcd.Controller, bgp palette.Palette) {
	wy, wx := p.bus.Read(types.WY), p.bus.Read(types.WX)
	if !control.WindowEnabled || p.ly < wy || wx > 166 {
		return
	}

	start := int(wx) - 7
	y := p.windowLine
	for x := 0; x < ScreenWidth; x++ {
		if x < start {
			continue
		}
		px := uint8(x - start)
		tile := p.mapTile(control, control.WindowTileMapAddress, px/8, y/8)

		colour := tile[y%8][px%8]
		p.bgIndex[x] = colour
		line[x] = bgp.GetColour(colour)
	}
	p.windowLine++
}

func (p *PPU) renderSprites(line *[ScreenWidth][3]uint8, control lcd.Controller) {
	height := control.SpriteSize
	obp := [2]palette.Palette{
		palette.ByteToPalette(p.Palette, p.bus.Read(types.OBP0)),
		palette.ByteToPalette(p.Palette, p.bus.Read(types.OBP1)),
	}

	// pixels already claimed by a sprite of higher priority
	var claimed [ScreenWidth]bool
	for _, s := range p.scanOAM(p.ly, height) {
		row := int(p.ly) - (int(s.Y) - 16)
		if s.flipY {
			row = int(height) - 1 - row
		}
		number := int(s.TileID)
		if height == 16 {
			number = int(s.TileID &^ 1)
		}
		tile := &p.tiles[number+row/8]

		pal := obp[0]
		if s.useSecondPalette {
			pal = obp[1]
		}

		for px := 0; px < 8; px++ {
			x := int(s.X) - 8 + px
			if x < 0 || x >= ScreenWidth || claimed[x] {
				continue
			}
			column := px
			if s.flipX {
				column = 7 - px
			}

			colour := tile[row%8][column]
			if colour == 0 {
				continue // transparent
			}
			claimed[x] = true

			if s.behind && p.bgIndex[x] != 0 {
				continue
			}
			line[x] = pal.GetColour(colour)
		}
	}
}
