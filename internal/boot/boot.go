// Package boot provides the boot overlay for the Game Boy. When the
// system is not yet ready, reads from 0x0000 - 0x00FF are served by
// the overlay instead of the game image underneath it.
package boot

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
)

// Size is the size of a DMG boot overlay.
const Size = 0x100

// ErrInvalidLength is returned when a boot overlay is not exactly Size bytes.
var ErrInvalidLength = errors.New("boot: invalid boot rom length")

// ROM represents a boot ROM for the Game Boy. When the Game Boy first
// powers on, the boot ROM is mapped to memory addresses 0x0000 -
// 0x00FF.
//
// The boot ROM initializes the hardware and the registers, and once it
// has completed it is unmapped from memory (by writing to the types.BDIS
// register), the game image underneath it becomes visible, and execution
// continues at 0x0100.
type ROM struct {
	raw      [Size]byte // the raw boot rom
	checksum string     // the MD5 checksum of the boot rom
}

// LoadBootROM copies a boot ROM into a new ROM and returns a pointer to
// it. The input must be exactly 256 bytes long. The MD5 checksum of the
// boot rom is calculated and stored alongside it.
func LoadBootROM(b []byte) (*ROM, error) {
	if len(b) != Size {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, len(b))
	}

	r := &ROM{}
	copy(r.raw[:], b)
	sum := md5.Sum(b)
	r.checksum = hex.EncodeToString(sum[:])

	return r, nil
}

// Default returns the built-in boot overlay.
func Default() *ROM {
	r, _ := LoadBootROM(overlay[:])
	return r
}

// Read returns the byte at the given address.
func (b *ROM) Read(addr uint16) byte {
	return b.raw[addr&0xFF]
}

// Checksum returns the MD5 checksum of the boot rom.
func (b *ROM) Checksum() string {
	if b == nil {
		return ""
	}
	return b.checksum
}

// Model returns the model of the boot rom. The model
// is determined by the checksum of the boot rom.
func (b *ROM) Model() string {
	if b == nil {
		return "none"
	}
	if b.raw == overlay {
		return "built-in"
	}
	if model, ok := knownBootROMChecksums[b.checksum]; ok {
		return model
	}
	return "unknown"
}

// knownBootROMChecksums is a map of known boot rom checksums,
// with the key being the checksum, and the value being the
// model of the boot rom.
var knownBootROMChecksums = map[string]string{
	DMG0: "Game Boy (DMG-0)",
	DMG:  "Game Boy (DMG-01)",
	MGB:  "Game Boy Pocket",
	SGB:  "Super Game Boy",
	SGB2: "Super Game Boy 2",
}

const (
	// DMG0 is the checksum of the DMG early boot ROM,
	// a variant that was found in very early DMG units and
	// only ever sold in Japan.
	DMG0 = "a8f84a0ac44da5d3f0ee19f9cea80a8c"
	// DMG is the checksum of the DMG boot rom, which is
	// the most common boot ROM found in the original DMG-01
	// models.
	DMG = "32fbbd84168d3482956eb3c5051637f5"
	// MGB is the checksum of the MGB boot ROM, which differs
	// only by a single byte from the DMG boot ROM, loading
	// the value 0xFF into the A register, rather than 0x01.
	MGB = "71a378e71ff30b2d8a1f02bf5c7896aa"
	// SGB is the checksum of the SGB boot ROM.
	SGB = "d574d4f9c12f305074798f54c091a8b4"
	// SGB2 is the checksum of the SGB2 boot ROM, differing from
	// the SGB boot ROM by the value loaded into A.
	SGB2 = "e0430bca9925fb9882148fd2dc2418c1"
)
