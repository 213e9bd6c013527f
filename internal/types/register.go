package types

import "github.com/thelolagemann/gbcore/pkg/bits"

// Register represents a GB Register which is used to hold an 8-bit value.
// The CPU has 8 registers: A, B, C, D, E, H, L, and F. The F register is
// special in that it is used to hold the flags.
type Register = uint8

// RegisterPair represents a pair of GB Registers which is used to hold a 16-bit
// value. The CPU has 4 register pairs: AF, BC, DE, and HL. The pair does not
// hold any storage of its own, it points at the two 8-bit halves, so writes
// through either view are visible through the other.
type RegisterPair struct {
	High *Register
	Low  *Register
}

// Uint16 returns the value of the RegisterPair as an uint16.
func (r *RegisterPair) Uint16() uint16 {
	return bits.Join(*r.High, *r.Low)
}

// SetUint16 sets the value of the RegisterPair to the given value.
func (r *RegisterPair) SetUint16(value uint16) {
	*r.High, *r.Low = bits.Split(value)
}

// Registers represents the GB CPU registers.
type Registers struct {
	A Register
	B Register
	C Register
	D Register
	E Register
	F Register
	H Register
	L Register

	BC *RegisterPair
	DE *RegisterPair
	HL *RegisterPair
	AF *RegisterPair
}

// Flag is a mask for one of the condition bits held in the F register.
type Flag = uint8

const (
	// FlagZero is set when the result of an operation is zero.
	FlagZero Flag = Bit7
	// FlagSubtract is set when the last operation was a subtraction.
	FlagSubtract Flag = Bit6
	// FlagHalfCarry is set when an operation carried out of, or borrowed
	// into, bit 3.
	FlagHalfCarry Flag = Bit5
	// FlagCarry is set when an operation carried out of, or borrowed
	// into, bit 7.
	FlagCarry Flag = Bit4

	// FlagMask covers the bits of F that exist; the low nibble always reads 0.
	FlagMask = FlagZero | FlagSubtract | FlagHalfCarry | FlagCarry
)
