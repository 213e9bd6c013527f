// Command gbcore runs a Game Boy image, presenting its frames through
// one of the installed display drivers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/faiface/mainthread"
	"github.com/pkg/profile"
	"github.com/thelolagemann/gbcore/internal/boot"
	"github.com/thelolagemann/gbcore/internal/gameboy"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/loader"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/internal/ppu/palette"
	"github.com/thelolagemann/gbcore/pkg/display"
	"github.com/thelolagemann/gbcore/pkg/display/headless"
	_ "github.com/thelolagemann/gbcore/pkg/display/web"
	_ "github.com/thelolagemann/gbcore/pkg/display/window"
	"github.com/thelolagemann/gbcore/pkg/log"
)

type config struct {
	rom, boot     string
	noBoot        bool
	driver        string
	frames        uint64
	profile       string
	debug         bool
	palette       string
	serial        bool
	screenshot    string
	screenshotMul int
}

func main() {
	code := 0
	// SDL has to be driven from the main thread
	mainthread.Run(func() { code = run() })
	os.Exit(code)
}

func run() int {
	var cfg config
	flag.StringVar(&cfg.rom, "rom", "", "The image to load, a file path or http(s) URL")
	flag.StringVar(&cfg.boot, "boot", "", "The 256 byte boot rom to run before the image")
	flag.BoolVar(&cfg.noBoot, "noboot", false, "Start at the post-boot entry point 0x0100")
	flag.StringVar(&cfg.driver, "driver", "sdl", fmt.Sprintf("The display driver to use (auto, %s)", strings.Join(display.Names(), ", ")))
	flag.Uint64Var(&cfg.frames, "frames", 0, "Stop after this many frames, 0 runs until stopped")
	flag.StringVar(&cfg.profile, "profile", "", "Write a cpu or mem profile to the working directory")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")
	flag.StringVar(&cfg.palette, "palette", "greyscale", "The palette to draw with (greyscale, green, red, yellow)")
	flag.BoolVar(&cfg.serial, "serial", false, "Write serial output to stdout")
	flag.StringVar(&cfg.screenshot, "screenshot", "", "Save the last frame to this .png or .bmp file on exit")
	flag.IntVar(&cfg.screenshotMul, "screenshot-scale", 1, "Scale factor of the screenshot")

	display.RegisterFlags(flag.CommandLine)
	flag.Parse()

	logger := log.New()
	if cfg.debug {
		logger = log.NewWithWriter(os.Stderr, true)
	}

	switch cfg.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		logger.Fatal(fmt.Sprintf("unknown profile %q, expected cpu or mem", cfg.profile))
	}

	if err := start(cfg, logger); err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	return 0
}

func start(cfg config, logger log.Logger) error {
	if cfg.rom == "" {
		flag.Usage()
		return fmt.Errorf("no image given, use -rom")
	}

	driver := display.GetDriver(cfg.driver)
	if driver == nil {
		return fmt.Errorf("unknown display driver %q, installed: %s", cfg.driver, strings.Join(display.Names(), ", "))
	}

	pal, err := palette.ByName(cfg.palette)
	if err != nil {
		return err
	}

	// the driver stops on signals, the emulation also when the driver
	// stops or the frame limit is reached
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	var (
		pressed  = make(chan joypad.Button, 8)
		released = make(chan joypad.Button, 8)
		sink     = display.NewSink(2)
		last     ppu.Frame
	)
	var listener ppu.Listener = ppu.ListenerFunc(func(frame ppu.Frame) {
		last = frame
		sink.OnFrame(frame)
	})
	if cfg.frames > 0 {
		listener = display.Limit(listener, cfg.frames, cancel)
	}

	opts := []gameboy.Opt{
		gameboy.WithLogger(logger),
		gameboy.WithListener(listener),
		gameboy.WithInput(pressed, released),
		gameboy.WithPalette(pal),
	}
	if cfg.debug {
		opts = append(opts, gameboy.Debug())
	}
	if cfg.serial {
		opts = append(opts, gameboy.WithSerialOutput(os.Stdout))
	}
	if cfg.noBoot {
		opts = append(opts, gameboy.NoBoot())
	}
	if cfg.boot != "" {
		b, err := loader.Open(cfg.boot).Load()
		if err != nil {
			return fmt.Errorf("loading boot rom: %w", err)
		}
		rom, err := boot.LoadBootROM(b)
		if err != nil {
			return err
		}
		logger.Infof("using %s boot rom %s", rom.Model(), rom.Checksum())
		opts = append(opts, gameboy.WithBootROM(rom))
	}

	gb := gameboy.NewGameBoy(opts...)
	if err := gb.LoadGame(loader.Open(cfg.rom)); err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- gb.Run(ctx)
		sink.Close()
	}()

	driverErr := driver.Start(sigCtx, sink.Frames(), pressed, released)
	cancel()
	if err := <-runErr; err != nil {
		return err
	}
	if driverErr != nil {
		return fmt.Errorf("display driver %s: %w", cfg.driver, driverErr)
	}
	frames := gb.PPU.Frames()
	logger.Debugf("ran %d frames (%.1fs emulated), %d dropped by the display",
		frames, float64(frames)/gameboy.FrameRate, sink.Dropped())

	if cfg.screenshot != "" {
		if err := headless.Save(cfg.screenshot, last, cfg.screenshotMul); err != nil {
			return fmt.Errorf("saving screenshot: %w", err)
		}
		logger.Infof("saved screenshot to %s", cfg.screenshot)
	}

	return nil
}
