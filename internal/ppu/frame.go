package ppu

import (
	"image"
	"image/color"

	"github.com/cespare/xxhash"
)

// Frame is a complete 160x144 RGB image. As an array it is copied on
// assignment, so a Frame handed to another goroutine is a snapshot.
type Frame [ScreenHeight][ScreenWidth][3]uint8

// Bytes returns the frame as packed RGB, row by row.
func (f *Frame) Bytes() []byte {
	b := make([]byte, 0, ScreenHeight*ScreenWidth*3)
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			b = append(b, f[y][x][:]...)
		}
	}
	return b
}

// Hash returns the xxhash of the frame, used to skip identical frames.
func (f *Frame) Hash() uint64 {
	return xxhash.Sum64(f.Bytes())
}

// Image converts the frame to an image.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			rgb := f[y][x]
			img.SetRGBA(x, y, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF})
		}
	}
	return img
}
