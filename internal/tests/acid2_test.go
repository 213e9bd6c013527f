package tests

import (
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/internal/ppu/palette"
	"github.com/thelolagemann/gbcore/pkg/display/headless"
)

// frameShades returns the shade (0 lightest to 3 darkest) of every
// pixel of a frame drawn with the greyscale palette.
func frameShades(t *testing.T, frame ppu.Frame) [ppu.ScreenHeight][ppu.ScreenWidth]uint8 {
	var shades [ppu.ScreenHeight][ppu.ScreenWidth]uint8
	colors := palette.Palettes[palette.Greyscale].Colors
	for y := range frame {
	next:
		for x := range frame[y] {
			for shade, c := range colors {
				if frame[y][x] == c {
					shades[y][x] = uint8(shade)
					continue next
				}
			}
			t.Fatalf("pixel (%d, %d) %v is not a greyscale shade", x, y, frame[y][x])
		}
	}
	return shades
}

// imageShades returns the shade of every pixel of a reference image,
// which are drawn with evenly spaced greys.
func imageShades(t *testing.T, path string) [ppu.ScreenHeight][ppu.ScreenWidth]uint8 {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, _, err := image.Decode(f)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight), img.Bounds())

	var shades [ppu.ScreenHeight][ppu.ScreenWidth]uint8
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			shades[y][x] = 3 - uint8((r>>8+42)/85)
		}
	}
	return shades
}

func TestAcid2(t *testing.T) {
	g := newGameBoy(t, "dmg-acid2/dmg-acid2.gb")
	expected := imageShades(t, findROM(t, "dmg-acid2/dmg-acid2-dmg.png"))

	frame, _ := runFrames(t, g, 2*framesPerSecond, nil)
	actual := frameShades(t, frame)

	var diff int
	for y := range actual {
		for x := range actual[y] {
			if actual[y][x] != expected[y][x] {
				diff++
			}
		}
	}
	if !assert.Zero(t, diff, "pixels differing from the reference") {
		path := filepath.Join(os.TempDir(), "dmg-acid2-actual.png")
		if err := headless.Save(path, frame, 1); err == nil {
			t.Logf("actual frame saved to %s", path)
		}
	}
}
