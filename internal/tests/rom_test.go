// Package tests runs the community test roms against the emulator. The
// roms are not distributed with the repository; tests whose rom cannot
// be found are skipped. Set GBCORE_ROMS to the directory holding them.
package tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gbcore/internal/gameboy"
	"github.com/thelolagemann/gbcore/internal/loader"
	"github.com/thelolagemann/gbcore/internal/ppu"
)

// framesPerSecond rounds the frame rate for test budgets.
const framesPerSecond = 60

func romDir() string {
	if dir := os.Getenv("GBCORE_ROMS"); dir != "" {
		return dir
	}
	return filepath.Join("..", "..", "roms")
}

// findROM returns the path of the rom, skipping the test when it is
// not available.
func findROM(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(romDir(), filepath.FromSlash(name))
	if _, err := os.Stat(path); err != nil {
		t.Skipf("rom %s not available", name)
	}
	return path
}

// newGameBoy returns a Game Boy that has booted into the rom.
func newGameBoy(t *testing.T, name string, opts ...gameboy.Opt) *gameboy.GameBoy {
	t.Helper()
	g := gameboy.NewGameBoy(append([]gameboy.Opt{gameboy.WithBootSequence()}, opts...)...)
	require.NoError(t, g.LoadGame(loader.NewFileSource(findROM(t, name))))
	return g
}

// runFrames runs up to n frames, stopping early once done reports true.
// It returns the last frame and whether done was reached.
func runFrames(t *testing.T, g *gameboy.GameBoy, n int, done func() bool) (ppu.Frame, bool) {
	t.Helper()
	var last ppu.Frame
	for i := 0; i < n; i++ {
		frame, err := g.Frame()
		require.NoError(t, err)
		last = frame
		if done != nil && done() {
			return last, true
		}
	}
	return last, done == nil
}
