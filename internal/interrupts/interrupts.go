// Package interrupts implements the interrupt request and enable
// registers of the Game Boy. Both registers live in the flat address
// space (types.IF and types.IE), the Service only gives them meaning.
package interrupts

import (
	"github.com/thelolagemann/gbcore/internal/types"
)

const (
	// VBlankFlag is the VBlank interrupt flag (bit 0),
	// which is requested every time the PPU enters
	// VBlank mode (lcd.VBlank).
	VBlankFlag = types.Bit0
	// LCDFlag is the LCD interrupt flag (bit 1), which
	// is requested by the LCD STAT register (types.STAT),
	// when certain conditions are met.
	LCDFlag = types.Bit1
	// TimerFlag is the Timer interrupt flag (bit 2),
	// which is requested when the timer overflows,
	// (types.TIMA > 0xFF).
	TimerFlag = types.Bit2
	// SerialFlag is the Serial interrupt flag (bit 3),
	// which is requested when a serial transfer is
	// completed.
	SerialFlag = types.Bit3
	// JoypadFlag is the Joypad interrupt Flag (bit 4),
	// which is requested when any of types.P1 bits 0-3
	// go from high to low, if the corresponding select
	// bit (types.P1 bit 4 or 5) is set to 0.
	JoypadFlag = types.Bit4

	mask = 0x1F
)

// Memory is the view of the address space the Service needs. Set
// stores a byte without triggering any write side effects.
type Memory interface {
	Read(address uint16) uint8
	Set(address uint16, value uint8)
}

// Service is the interrupt service, used to request
// interrupts and to get the current interrupt vector.
//
// When an interrupt is requested, the corresponding bit
// in types.IF is set. When an interrupt is enabled, the
// corresponding bit in types.IE is set. When an interrupt
// is requested and enabled, and the IME is set, the CPU
// will jump to the interrupt vector, and the corresponding
// bit in types.IF will be cleared.
//
// The IME is set by the DI, EI and RETI instructions,
// and it is used to disable and enable interrupts.
type Service struct {
	IME bool

	mem Memory
}

// NewService returns a new Service backed by mem.
func NewService(mem Memory) *Service {
	return &Service{mem: mem}
}

// Request requests the specified interrupt, by setting
// the corresponding bit in types.IF.
func (s *Service) Request(flag uint8) {
	s.mem.Set(types.IF, s.mem.Read(types.IF)|flag)
}

// Pending returns the interrupts that are both requested
// and enabled, regardless of the IME.
func (s *Service) Pending() uint8 {
	return s.mem.Read(types.IE) & s.mem.Read(types.IF) & mask
}

// HasInterrupts returns true if there are any interrupts
// that are requested and enabled.
func (s *Service) HasInterrupts() bool {
	return s.Pending() != 0
}

// Vector returns the address of the highest priority pending
// interrupt and acknowledges it by clearing its bit in types.IF.
// Only one interrupt is serviced at a time, in the order of priority:
//
//   - VBlank (0x40)
//   - LCD    (0x48)
//   - Timer  (0x50)
//   - Serial (0x58)
//   - Joypad (0x60)
//
// The second return value is false when nothing is pending.
func (s *Service) Vector() (uint16, bool) {
	pending := s.Pending()
	for i := uint8(0); i < 5; i++ {
		flag := uint8(1) << i
		if pending&flag != 0 {
			s.mem.Set(types.IF, s.mem.Read(types.IF)&^flag)
			return 0x40 + uint16(i)*8, true
		}
	}
	return 0, false
}

// Reset disables the IME.
func (s *Service) Reset() {
	s.IME = false
}
