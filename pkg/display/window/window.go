// Package window provides a display driver that presents frames in an
// SDL window and reads the keyboard as the joypad.
//
// SDL must be driven from the main OS thread, so programs using this
// driver have to wrap their main function in mainthread.Run.
package window

import (
	"context"
	"fmt"
	"time"

	"github.com/faiface/mainthread"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/pkg/bits"
	"github.com/thelolagemann/gbcore/pkg/display"
	"github.com/thelolagemann/gbcore/pkg/log"
	"github.com/veandco/go-sdl2/sdl"
)

// pollInterval is how often keyboard and window events are handled.
const pollInterval = time.Second / 120

// maxScale is the largest scale factor a window is opened with.
const maxScale = 16

// Options configures the window driver.
type Options struct {
	Title string
	Scale int
	// Keys remaps buttons, as a comma separated list of button=key
	// pairs such as "A=Space,Start=Return"
	Keys string
}

// DefaultOptions are the options the driver is installed with.
var DefaultOptions = Options{
	Title: "gbcore",
	Scale: 3,
}

// Driver presents frames in an SDL window.
type Driver struct {
	Options
	Log log.Logger

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	keys     map[sdl.Keycode]joypad.Button
}

// New returns a new Driver.
func New(opts Options) *Driver {
	return &Driver{Options: opts, Log: log.NewNullLogger()}
}

func init() {
	d := New(DefaultOptions)
	display.Install("sdl", d, []display.DriverOption{
		{Name: "title", Default: DefaultOptions.Title, Value: &d.Title, Description: "title of the window", Type: "string"},
		{Name: "scale", Default: DefaultOptions.Scale, Value: &d.Scale, Description: "scale factor of the window", Type: "int"},
		{Name: "keys", Default: DefaultOptions.Keys, Value: &d.Keys, Description: "button=key remappings, e.g. A=Space,Start=Return", Type: "string"},
	})
}

// Start implements display.Driver. It returns once ctx is done, frames
// is closed or the window is closed.
func (d *Driver) Start(ctx context.Context, frames <-chan *ppu.Frame, pressed, released chan<- joypad.Button) error {
	var err error
	mainthread.Call(func() { d.keys, err = ParseKeys(d.Keys) })
	if err != nil {
		return err
	}
	mainthread.Call(func() { err = d.open() })
	if err != nil {
		return err
	}
	defer mainthread.Call(d.close)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	// changes wait here until the emulator takes them, as the event
	// loop on the main thread must not block
	input := display.NewQueue(pressed, released)
	for {
		out, b := input.Out()
		select {
		case <-ctx.Done():
			return nil
		case out <- b:
			input.Sent()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			mainthread.Call(func() { err = d.present(frame) })
			if err != nil {
				return err
			}
		case <-ticker.C:
			var quit bool
			mainthread.Call(func() { quit = d.poll(input) })
			if quit {
				d.Log.Debugf("sdl: window closed")
				return nil
			}
		}
	}
}

func (d *Driver) open() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("sdl: initialising video: %w", err)
	}

	scale := int32(bits.Clamp(1, d.Scale, maxScale))

	var err error
	d.window, err = sdl.CreateWindow(d.Title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		ppu.ScreenWidth*scale, ppu.ScreenHeight*scale,
		sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("sdl: creating window: %w", err)
	}

	d.renderer, err = sdl.CreateRenderer(d.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		d.close()
		return fmt.Errorf("sdl: creating renderer: %w", err)
	}

	// the texture is the size of the screen, the renderer stretches it
	// to the window
	d.texture, err = d.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGB24),
		sdl.TEXTUREACCESS_STREAMING, ppu.ScreenWidth, ppu.ScreenHeight)
	if err != nil {
		d.close()
		return fmt.Errorf("sdl: creating texture: %w", err)
	}

	return nil
}

// close frees everything open created, in reverse.
func (d *Driver) close() {
	if d.texture != nil {
		_ = d.texture.Destroy()
		d.texture = nil
	}
	if d.renderer != nil {
		_ = d.renderer.Destroy()
		d.renderer = nil
	}
	if d.window != nil {
		_ = d.window.Destroy()
		d.window = nil
	}
	sdl.Quit()
}

func (d *Driver) present(frame *ppu.Frame) error {
	if err := d.texture.Update(nil, frame.Bytes(), ppu.ScreenWidth*3); err != nil {
		return fmt.Errorf("sdl: updating texture: %w", err)
	}
	if err := d.renderer.Copy(d.texture, nil, nil); err != nil {
		return fmt.Errorf("sdl: copying texture: %w", err)
	}
	d.renderer.Present()
	return nil
}

// poll handles the pending events, reporting whether the window was
// closed.
func (d *Driver) poll(input *display.Queue) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true
		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			b, ok := d.keys[e.Keysym.Sym]
			if !ok {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				input.Press(b)
			} else {
				input.Release(b)
			}
		}
	}
	return false
}
