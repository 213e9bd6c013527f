// Package headless provides a display driver that writes frames to
// image files instead of presenting them, for running without a screen.
package headless

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/pkg/display"
	"github.com/thelolagemann/gbcore/pkg/log"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// ErrUnknownFormat is returned when asked to encode an image format
// other than png or bmp.
var ErrUnknownFormat = errors.New("headless: unknown image format")

// Options configures the headless driver.
type Options struct {
	Dir    string // directory the images are written to
	Every  int    // write every nth frame, 0 writes only the last
	Scale  int    // integer scale factor
	Format string // "png" or "bmp"
}

// DefaultOptions are the options the driver is installed with.
var DefaultOptions = Options{
	Dir:    ".",
	Every:  0,
	Scale:  1,
	Format: "png",
}

// Driver writes the frames it receives to image files. The last frame
// received is always written, as last.<format>.
type Driver struct {
	Options
	Log log.Logger

	written int
}

// New returns a new Driver.
func New(opts Options) *Driver {
	return &Driver{Options: opts, Log: log.NewNullLogger()}
}

func init() {
	d := New(DefaultOptions)
	display.Install("headless", d, []display.DriverOption{
		{Name: "dir", Default: DefaultOptions.Dir, Value: &d.Dir, Description: "directory to write frames to", Type: "string"},
		{Name: "every", Default: DefaultOptions.Every, Value: &d.Every, Description: "write every nth frame (0 writes only the last)", Type: "int"},
		{Name: "scale", Default: DefaultOptions.Scale, Value: &d.Scale, Description: "scale factor of the frames", Type: "int"},
		{Name: "format", Default: DefaultOptions.Format, Value: &d.Format, Description: "image format (png or bmp)", Type: "string"},
	})
}

// Written returns the number of images written by the last Start.
func (d *Driver) Written() int {
	return d.written
}

// Start implements display.Driver. The headless driver has no input,
// so pressed and released are never used.
func (d *Driver) Start(ctx context.Context, frames <-chan *ppu.Frame, _, _ chan<- joypad.Button) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	d.written = 0

	var (
		last     ppu.Frame
		received int
	)
	for {
		select {
		case <-ctx.Done():
			return d.finish(last, received)
		case frame, ok := <-frames:
			if !ok {
				return d.finish(last, received)
			}
			received++
			last = *frame
			if d.Every > 0 && received%d.Every == 0 {
				if err := d.write(fmt.Sprintf("frame-%06d", received), last); err != nil {
					return err
				}
			}
		}
	}
}

// finish writes the last frame, if any were received.
func (d *Driver) finish(last ppu.Frame, received int) error {
	if received == 0 {
		return nil
	}
	return d.write("last", last)
}

func (d *Driver) write(name string, frame ppu.Frame) error {
	path := filepath.Join(d.Dir, name+"."+d.Format)
	if err := Save(path, frame, d.Scale); err != nil {
		return err
	}
	d.written++
	d.Log.Debugf("headless: wrote %s", path)
	return nil
}

// Save writes frame to path, in the format given by its extension.
func Save(path string, frame ppu.Frame, scale int) (err error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format != "png" && format != "bmp" {
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); err == nil {
			err = cErr
		}
	}()

	return Encode(f, frame, scale, format)
}

// Encode writes frame to w as format, scaled by scale with nearest
// neighbour interpolation so the pixels stay sharp.
func Encode(w io.Writer, frame ppu.Frame, scale int, format string) error {
	img := Scale(frame, scale)
	switch format {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// Scale returns frame as an image scale times its size.
func Scale(frame ppu.Frame, scale int) image.Image {
	src := frame.Image()
	if scale <= 1 {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*scale, ppu.ScreenHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
