package cpu

import "github.com/thelolagemann/gbcore/internal/types"

// rotateLeft rotates n left, moving bit 7 into bit 0 and the carry flag.
//
//	RLC n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7 data.
func (c *CPU) rotateLeft(n uint8) uint8 {
	result := n<<1 | n>>7
	c.setFlags(result == 0, false, false, n&types.Bit7 != 0)
	return result
}

// rotateRight rotates n right, moving bit 0 into bit 7 and the carry flag.
//
//	RRC n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0 data.
func (c *CPU) rotateRight(n uint8) uint8 {
	result := n>>1 | n<<7
	c.setFlags(result == 0, false, false, n&types.Bit0 != 0)
	return result
}

// rotateLeftThroughCarry rotates n left through the carry flag.
//
//	RL n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7 data.
func (c *CPU) rotateLeftThroughCarry(n uint8) uint8 {
	result := n<<1 | c.carry()
	c.setFlags(result == 0, false, false, n&types.Bit7 != 0)
	return result
}

// rotateRightThroughCarry rotates n right through the carry flag.
//
//	RR n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0 data.
func (c *CPU) rotateRightThroughCarry(n uint8) uint8 {
	result := n>>1 | c.carry()<<7
	c.setFlags(result == 0, false, false, n&types.Bit0 != 0)
	return result
}

// rotateAccumulator applies rotate to the A Register. Unlike the CB
// prefixed rotates, the zero flag is always reset.
//
//	RLCA, RRCA, RLA, RRA
func (c *CPU) rotateAccumulator(rotate func(*CPU, uint8) uint8) {
	c.A = rotate(c, c.A)
	c.clearFlag(types.FlagZero)
}

// shiftLeftArithmetic shifts n left into the carry flag, bit 0 is reset.
//
//	SLA n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7 data.
func (c *CPU) shiftLeftArithmetic(n uint8) uint8 {
	result := n << 1
	c.setFlags(result == 0, false, false, n&types.Bit7 != 0)
	return result
}

// shiftRightArithmetic shifts n right into the carry flag, bit 7 is
// unchanged.
//
//	SRA n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0 data.
func (c *CPU) shiftRightArithmetic(n uint8) uint8 {
	result := n&types.Bit7 | n>>1
	c.setFlags(result == 0, false, false, n&types.Bit0 != 0)
	return result
}

// shiftRightLogical shifts n right into the carry flag, bit 7 is reset.
//
//	SRL n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0 data.
func (c *CPU) shiftRightLogical(n uint8) uint8 {
	result := n >> 1
	c.setFlags(result == 0, false, false, n&types.Bit0 != 0)
	return result
}

// swap the upper and lower nibbles of n.
//
//	SWAP n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) swap(n uint8) uint8 {
	c.setFlags(n == 0, false, false, false)
	return n<<4 | n>>4
}

// testBit tests bit b of n.
//
//	BIT b, n
//	b = 0 - 7
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if bit b of n is 0.
//	N - Reset.
//	H - Set.
//	C - Not affected.
func (c *CPU) testBit(n uint8, b uint8) {
	c.setFlags(n&(1<<b) == 0, false, true, c.isFlagSet(types.FlagCarry))
}
