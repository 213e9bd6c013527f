// Package palette provides the colours the four DMG shades are drawn with.
package palette

import "fmt"

const (
	// Greyscale is the default greyscale palette.
	Greyscale = iota
	// Green is the green palette which attempts to emulate
	// the original colour palette as it would have appeared
	// on the original Game Boy.
	Green
	// Red is a red palette.
	Red
	// Yellow is a yellow palette.
	Yellow
)

// Palette represents a palette. A palette is an array of 4 RGB values,
// that can be used to represent a colour.
type Palette struct {
	Colors [4][3]uint8
}

// Palettes is a list of all available palettes.
var Palettes = [...]Palette{
	// Greyscale
	{
		Colors: [4][3]uint8{
			{0xFF, 0xFF, 0xFF},
			{0xCC, 0xCC, 0xCC},
			{0x77, 0x77, 0x77},
			{0x00, 0x00, 0x00},
		},
	},
	// Green
	{
		Colors: [4][3]uint8{
			{0x9B, 0xBC, 0x0F},
			{0x8B, 0xAC, 0x0F},
			{0x30, 0x62, 0x30},
			{0x0F, 0x38, 0x0F},
		},
	},
	// Red
	{
		Colors: [4][3]uint8{
			{0xFF, 0x00, 0x00},
			{0xCC, 0x00, 0x00},
			{0x77, 0x00, 0x00},
			{0x00, 0x00, 0x00},
		},
	},
	// Yellow
	{
		Colors: [4][3]uint8{
			{0xFF, 0xFF, 0x00},
			{0xCC, 0xCC, 0x00},
			{0x77, 0x77, 0x00},
			{0x00, 0x00, 0x00},
		},
	},
}

var names = map[string]int{
	"greyscale": Greyscale,
	"green":     Green,
	"red":       Red,
	"yellow":    Yellow,
}

// ByName returns the palette with the given name.
func ByName(name string) (Palette, error) {
	i, ok := names[name]
	if !ok {
		return Palette{}, fmt.Errorf("palette: unknown palette %q", name)
	}
	return Palettes[i], nil
}

// ByteToPalette maps the shades of a palette register (BGP, OBP0 or
// OBP1) onto the colours of base.
func ByteToPalette(base Palette, b byte) Palette {
	var palette Palette
	palette.Colors[0] = base.Colors[b&0x03]
	palette.Colors[1] = base.Colors[(b>>2)&0x03]
	palette.Colors[2] = base.Colors[(b>>4)&0x03]
	palette.Colors[3] = base.Colors[(b>>6)&0x03]
	return palette
}

// GetColour returns the colour at index.
func (p Palette) GetColour(index uint8) [3]uint8 {
	return p.Colors[index&0x03]
}
