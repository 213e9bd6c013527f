package cpu

import "github.com/thelolagemann/gbcore/pkg/bits"

// pushStack pushes a 16 bit value onto the stack.
func (c *CPU) pushStack(value uint16) {
	high, low := bits.Split(value)
	c.SP--
	c.bus.Write(c.SP, high)
	c.SP--
	c.bus.Write(c.SP, low)
}

// popStack pops a 16 bit value off the stack.
func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.SP)
	c.SP++
	high := c.bus.Read(c.SP)
	c.SP++
	return bits.Join(high, low)
}

// jumpRelative reads a signed offset and jumps relative to the PC
// following it when condition is true.
//
//	JR e
//	JR cc, e
//	cc = NZ, Z, NC, C
//	e = 8-bit signed immediate value
func (c *CPU) jumpRelative(condition bool) uint8 {
	offset := int8(c.readOperand())
	if !condition {
		return 2
	}
	c.PC = uint16(int32(c.PC) + int32(offset))
	return 3
}

// jumpAbsolute reads an address and jumps to it when condition is true.
//
//	JP nn
//	JP cc, nn
//	cc = NZ, Z, NC, C
//	nn = 16-bit immediate value
func (c *CPU) jumpAbsolute(condition bool) uint8 {
	address := c.readOperand16()
	if !condition {
		return 3
	}
	c.PC = address
	return 4
}

// call reads an address, and when condition is true pushes the address
// of the next instruction onto the stack and jumps to it.
//
//	CALL nn
//	CALL cc, nn
//	cc = NZ, Z, NC, C
//	nn = 16-bit immediate value
func (c *CPU) call(condition bool) uint8 {
	address := c.readOperand16()
	if !condition {
		return 3
	}
	c.pushStack(c.PC)
	c.PC = address
	return 6
}

// ret pops an address off the stack and jumps to it.
//
//	RET
func (c *CPU) ret() uint8 {
	c.PC = c.popStack()
	return 4
}

// retConditional returns when condition is true.
//
//	RET cc
//	cc = NZ, Z, NC, C
func (c *CPU) retConditional(condition bool) uint8 {
	if !condition {
		return 2
	}
	c.PC = c.popStack()
	return 5
}

// restart pushes the PC onto the stack and jumps to one of the eight
// fixed restart addresses.
//
//	RST n
//	n = 0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38
func (c *CPU) restart(address uint16) uint8 {
	c.pushStack(c.PC)
	c.PC = address
	return 4
}
