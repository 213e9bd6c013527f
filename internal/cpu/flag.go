package cpu

import "github.com/thelolagemann/gbcore/internal/types"

// setFlags replaces the F register with the given flags. The lower
// nibble of F is always zero.
func (c *CPU) setFlags(zero, subtract, halfCarry, carry bool) {
	c.F = 0
	if zero {
		c.F |= types.FlagZero
	}
	if subtract {
		c.F |= types.FlagSubtract
	}
	if halfCarry {
		c.F |= types.FlagHalfCarry
	}
	if carry {
		c.F |= types.FlagCarry
	}
}

// setFlag sets a flag in the F register.
func (c *CPU) setFlag(flag types.Flag) {
	c.F |= flag
}

// clearFlag clears a flag from the F register.
func (c *CPU) clearFlag(flag types.Flag) {
	c.F &^= flag
}

// isFlagSet returns true if the given flag is set.
func (c *CPU) isFlagSet(flag types.Flag) bool {
	return c.F&flag != 0
}

// carry returns the carry flag as a bit.
func (c *CPU) carry() uint8 {
	return c.F & types.FlagCarry >> 4
}

// condition evaluates the branch condition encoded by index.
//
//	0 - NZ
//	1 - Z
//	2 - NC
//	3 - C
func (c *CPU) condition(index uint8) bool {
	switch index & 0x3 {
	case 0:
		return !c.isFlagSet(types.FlagZero)
	case 1:
		return c.isFlagSet(types.FlagZero)
	case 2:
		return !c.isFlagSet(types.FlagCarry)
	default:
		return c.isFlagSet(types.FlagCarry)
	}
}

var conditionNames = [4]string{"NZ", "Z", "NC", "C"}
