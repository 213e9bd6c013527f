package cpu

import "github.com/thelolagemann/gbcore/internal/types"

// add adds n, and the carry flag when carry is true, to the A Register.
//
//	ADD A, n
//	ADC A, n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) add(n uint8, carry bool) {
	var cy uint8
	if carry {
		cy = c.carry()
	}
	sum := uint16(c.A) + uint16(n) + uint16(cy)
	c.setFlags(uint8(sum) == 0, false, (c.A&0xF)+(n&0xF)+cy > 0xF, sum > 0xFF)
	c.A = uint8(sum)
}

// sub subtracts n, and the carry flag when carry is true, from the A
// Register and returns the result without storing it.
//
//	SUB n
//	SBC A, n
//	CP n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Set if borrow.
func (c *CPU) sub(n uint8, carry bool) uint8 {
	var cy uint8
	if carry {
		cy = c.carry()
	}
	result := c.A - n - cy
	c.setFlags(result == 0, true, c.A&0xF < (n&0xF)+cy, uint16(c.A) < uint16(n)+uint16(cy))
	return result
}

// compare compares n to the A Register, discarding the result of the
// subtraction.
func (c *CPU) compare(n uint8) {
	c.sub(n, false)
}

// and performs a bitwise AND operation on n and the A Register.
//
//	AND n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set.
//	C - Reset.
func (c *CPU) and(n uint8) {
	c.A &= n
	c.setFlags(c.A == 0, false, true, false)
}

// or performs a bitwise OR operation on n and the A Register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) or(n uint8) {
	c.A |= n
	c.setFlags(c.A == 0, false, false, false)
}

// xor performs a bitwise XOR operation on n and the A Register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) xor(n uint8) {
	c.A ^= n
	c.setFlags(c.A == 0, false, false, false)
}

// alu performs the arithmetic operation encoded by index on n and
// the A Register.
func (c *CPU) alu(index, n uint8) {
	switch index & 0x7 {
	case 0:
		c.add(n, false)
	case 1:
		c.add(n, true)
	case 2:
		c.A = c.sub(n, false)
	case 3:
		c.A = c.sub(n, true)
	case 4:
		c.and(n)
	case 5:
		c.xor(n)
	case 6:
		c.or(n)
	case 7:
		c.compare(n)
	}
}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB", "SBC A,", "AND", "XOR", "OR", "CP"}

// increment n by 1 and set the flags accordingly.
//
//	INC n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (c *CPU) increment(n uint8) uint8 {
	incremented := n + 1
	c.setFlags(incremented == 0, false, n&0xF == 0xF, c.isFlagSet(types.FlagCarry))
	return incremented
}

// decrement n by 1 and set the flags accordingly.
//
//	DEC n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Not affected.
func (c *CPU) decrement(n uint8) uint8 {
	decremented := n - 1
	c.setFlags(decremented == 0, true, n&0xF == 0, c.isFlagSet(types.FlagCarry))
	return decremented
}

// addHL adds n to the HL Register pair.
//
//	ADD HL, nn
//	nn = BC, DE, HL, SP
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (c *CPU) addHL(n uint16) {
	hl := c.HL.Uint16()
	sum := uint32(hl) + uint32(n)
	c.setFlags(c.isFlagSet(types.FlagZero), false, (hl&0xFFF)+(n&0xFFF) > 0xFFF, sum > 0xFFFF)
	c.HL.SetUint16(uint16(sum))
}

// addSPSigned reads a signed operand and returns it added to the stack
// pointer, used by both ADD SP, r8 and LD HL, SP+r8.
//
// Flags affected:
//
//	Z - Reset.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) addSPSigned() uint16 {
	value := c.readOperand()
	result := uint16(int32(c.SP) + int32(int8(value)))

	c.setFlags(false, false, (c.SP&0xF)+uint16(value&0xF) > 0xF, (c.SP&0xFF)+uint16(value) > 0xFF)
	return result
}

// decimalAdjust adjusts the A Register so that it holds the binary
// coded decimal result of the previous addition or subtraction.
//
//	DAA
//
// Flags affected:
//
//	Z - Set if register A is zero.
//	N - Not affected.
//	H - Reset.
//	C - Set or reset according to operation.
func (c *CPU) decimalAdjust() {
	if !c.isFlagSet(types.FlagSubtract) {
		if c.isFlagSet(types.FlagCarry) || c.A > 0x99 {
			c.A += 0x60
			c.setFlag(types.FlagCarry)
		}
		if c.isFlagSet(types.FlagHalfCarry) || c.A&0xF > 0x9 {
			c.A += 0x06
		}
	} else {
		if c.isFlagSet(types.FlagCarry) {
			c.A -= 0x60
		}
		if c.isFlagSet(types.FlagHalfCarry) {
			c.A -= 0x06
		}
	}
	c.clearFlag(types.FlagHalfCarry)
	if c.A == 0 {
		c.setFlag(types.FlagZero)
	} else {
		c.clearFlag(types.FlagZero)
	}
}
