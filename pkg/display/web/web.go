// Package web provides a display driver that streams frames to
// browsers over websockets, and takes their button presses as input.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/pkg/display"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// Options configures the web driver.
type Options struct {
	Addr             string
	Compression      bool
	CompressionLevel int
	CacheSize        int
}

// DefaultOptions are the options the driver is installed with.
var DefaultOptions = Options{
	Addr:             ":8090",
	Compression:      true,
	CompressionLevel: brotli.DefaultCompression,
	CacheSize:        16,
}

// Driver streams frames to the connected websocket clients.
type Driver struct {
	Options
	Log log.Logger

	// listening is closed once the server first accepts connections
	listening chan struct{}
	once      sync.Once
	addr      net.Addr
}

// New returns a new Driver.
func New(opts Options) *Driver {
	return &Driver{
		Options:   opts,
		Log:       log.NewNullLogger(),
		listening: make(chan struct{}),
	}
}

func init() {
	d := New(DefaultOptions)
	display.Install("web", d, []display.DriverOption{
		{Name: "addr", Default: DefaultOptions.Addr, Value: &d.Addr, Description: "address to serve the websocket on", Type: "string"},
		{Name: "compression", Default: DefaultOptions.Compression, Value: &d.Compression, Description: "brotli compress frames", Type: "bool"},
		{Name: "level", Default: DefaultOptions.CompressionLevel, Value: &d.CompressionLevel, Description: "brotli compression level (0-11)", Type: "int"},
		{Name: "cache", Default: DefaultOptions.CacheSize, Value: &d.CacheSize, Description: "number of recent frames clients cache", Type: "int"},
	})
}

// ListenAddr returns the address the server is listening on, blocking
// until it is.
func (d *Driver) ListenAddr() net.Addr {
	<-d.listening
	return d.addr
}

// Start implements display.Driver.
func (d *Driver) Start(ctx context.Context, frames <-chan *ppu.Frame, pressed, released chan<- joypad.Button) error {
	ln, err := net.Listen("tcp", d.Options.Addr)
	if err != nil {
		return err
	}
	d.addr = ln.Addr()
	d.once.Do(func() { close(d.listening) })
	d.Log.Infof("web: serving on %s", d.addr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := newHub(d.Options, pressed, released, d.Log)
	go h.run(ctx)

	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	d.relay(ctx, h, frames)

	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// relay hands frames to the hub until ctx is done or frames closes.
func (d *Driver) relay(ctx context.Context, h *hub, frames <-chan *ppu.Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			select {
			case h.frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}
}
