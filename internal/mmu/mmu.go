// Package mmu provides a memory management unit for the Game Boy. The
// MMU owns a flat 64kB address space and is unaware of the other
// components. Side effects of writes are delivered through a single
// Observer (video memory) and per-address write hooks (I/O registers).
package mmu

import (
	"errors"
	"fmt"

	"github.com/thelolagemann/gbcore/internal/boot"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/bits"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// ErrImageTooLarge is returned by Load when an image does not fit
// between its base address and the end of the ROM region.
var ErrImageTooLarge = errors.New("mmu: image too large")

// Observer receives every write that lands in video memory
// (types.VRAMStart - types.VRAMEnd), after the byte has been stored.
type Observer interface {
	OnVRAMWrite(address uint16, value uint8)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(address uint16, value uint8)

// OnVRAMWrite calls f(address, value).
func (f ObserverFunc) OnVRAMWrite(address uint16, value uint8) {
	f(address, value)
}

// nopObserver is registered when nobody is listening.
type nopObserver struct{}

func (nopObserver) OnVRAMWrite(uint16, uint8) {}

// WriteHook is called when the CPU writes to a reserved I/O register.
// The returned value is the byte actually stored.
type WriteHook func(value uint8) uint8

// MMU is the memory management unit for the Game Boy. It handles all
// memory reads and writes to the Game Boy's 64kB of memory:
//
//	0x0000 - 0x00FF - Boot overlay (while the system is not ready)
//	0x0000 - 0x7FFF - Game image (32kB)
//	0x8000 - 0x9FFF - Video RAM (8kB), observed
//	0xA000 - 0xFDFF - External, work and echo RAM
//	0xFE00 - 0xFE9F - Sprite Attribute Table (160B)
//	0xFF00 - 0xFF7F - I/O Registers, optionally hooked
//	0xFF80 - 0xFFFE - Zero Page RAM (127B)
//	0xFFFF          - Interrupt enable register
type MMU struct {
	raw [0x10000]uint8

	bootROM     *boot.ROM
	systemReady bool

	observer Observer
	hooks    [0x100]WriteHook

	Log log.Logger
}

// NewMMU returns a new MMU serving overlay below types.BootLimit until
// the system is ready. A nil overlay selects boot.Default.
func NewMMU(overlay *boot.ROM, logger log.Logger) *MMU {
	if overlay == nil {
		overlay = boot.Default()
	}
	if logger == nil {
		logger = log.NewNullLogger()
	}
	m := &MMU{
		bootROM:  overlay,
		observer: nopObserver{},
		Log:      logger,
	}

	m.Reserve(types.BDIS, func(v uint8) uint8 {
		// it's assumed any non-zero write to this register will disable the boot rom
		if v != 0 && !m.systemReady {
			m.Log.Debugf("boot overlay unmapped")
			m.SetSystemReady(true)
		}
		return v
	})
	m.Reserve(types.DMA, func(v uint8) uint8 {
		m.dma(uint16(v) << 8)
		return v
	})

	return m
}

// dma copies a page of sprite attributes into OAM.
func (m *MMU) dma(source uint16) {
	for i := uint16(0); i < types.OAMSize; i++ {
		m.raw[types.OAMStart+i] = m.Read(source + i)
	}
}

// Reserve installs hook for writes to the I/O register at address,
// replacing any previous hook. Addresses outside 0xFF00 - 0xFFFF
// cannot be reserved.
func (m *MMU) Reserve(address uint16, hook WriteHook) {
	if address < 0xFF00 {
		panic(fmt.Sprintf("mmu: cannot reserve 0x%04X", address))
	}
	m.hooks[address&0xFF] = hook
}

// SetObserver registers o as the video memory observer, replacing the
// previous one. A nil o removes the observer.
func (m *MMU) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	m.observer = o
}

// SetOverlay replaces the boot overlay. A nil overlay selects
// boot.Default.
func (m *MMU) SetOverlay(overlay *boot.ROM) {
	if overlay == nil {
		overlay = boot.Default()
	}
	m.bootROM = overlay
}

// SetSystemReady sets the system ready flag. Once the system is ready
// it stays ready until Reset.
func (m *MMU) SetSystemReady(ready bool) {
	m.systemReady = m.systemReady || ready
}

// SystemReady reports whether the boot overlay has been unmapped.
func (m *MMU) SystemReady() bool {
	return m.systemReady
}

// Reset zero-fills the address space and maps the boot overlay again.
// The observer and write hooks are kept.
func (m *MMU) Reset() {
	m.raw = [0x10000]uint8{}
	m.systemReady = false
}

// Load copies image verbatim into memory starting at base. Images that
// do not fit below types.ROMLimit are rejected and memory is left
// untouched.
func (m *MMU) Load(base uint16, image []byte) error {
	if int(base)+len(image) > types.ROMLimit {
		return fmt.Errorf("%w: %d bytes at 0x%04X", ErrImageTooLarge, len(image), base)
	}
	copy(m.raw[base:], image)
	m.Log.Debugf("loaded %d bytes at 0x%04X", len(image), base)
	return nil
}

// Read returns the value at the given address.
func (m *MMU) Read(address uint16) uint8 {
	if address < types.BootLimit && !m.systemReady {
		return m.bootROM.Read(address)
	}
	return m.raw[address]
}

// ReadWord returns the little endian word at address. The high byte is
// read from address+1, wrapping at the top of the address space.
func (m *MMU) ReadWord(address uint16) uint16 {
	low := m.Read(address)
	return bits.Join(m.Read(address+1), low)
}

// Write stores value at address. Writes to reserved I/O registers go
// through their hook first, and writes to video memory are reported to
// the observer once the byte has been stored.
func (m *MMU) Write(address uint16, value uint8) {
	if address >= 0xFF00 {
		if hook := m.hooks[address&0xFF]; hook != nil {
			value = hook(value)
		}
	}
	m.raw[address] = value

	if address >= types.VRAMStart && address < types.VRAMEnd {
		m.observer.OnVRAMWrite(address, value)
	}
}

// WriteWord stores value little endian, low byte first.
func (m *MMU) WriteWord(address uint16, value uint16) {
	high, low := bits.Split(value)
	m.Write(address, low)
	m.Write(address+1, high)
}

// Set stores value at address without running hooks or notifying the
// observer. It is used by hardware to update its own registers.
func (m *MMU) Set(address uint16, value uint8) {
	m.raw[address] = value
}
