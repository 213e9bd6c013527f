package cpu

import (
	"fmt"
)

// InstructionSetCB holds the 256 instructions that follow the 0xCB prefix.
//
//	00 000 000
//	^^ ^^^ ^^^
//	op bit reg
var InstructionSetCB [256]Instruction

func defineInstructionCB(opcode uint8, name string, fn func(*CPU) uint8) {
	InstructionSetCB[opcode] = Instruction{name: name, fn: fn}
}

// modifier applies a CB operation to a value.
type modifier func(c *CPU, value uint8) uint8

func init() {
	generateRotateInstructions()
	generateBitInstructions()
}

// generateModifier defines the instruction at opcode for each register,
// writing back the result of fn. Register operands take 2 cycles, and
// (HL) 4 cycles for the read-modify-write.
func generateModifier(opcode uint8, name string, fn modifier) {
	for i := uint8(0); i < 8; i++ {
		index := i
		// (HL) needs to be handled differently as it is a memory address
		if index == 6 {
			defineInstructionCB(opcode|index, fmt.Sprintf("%s (HL)", name), func(c *CPU) uint8 {
				address := c.HL.Uint16()
				c.bus.Write(address, fn(c, c.bus.Read(address)))
				return 4
			})
			continue
		}
		defineInstructionCB(opcode|index, fmt.Sprintf("%s %s", name, registerNames[index]), func(c *CPU) uint8 {
			r := c.register(index)
			*r = fn(c, *r)
			return 2
		})
	}
}

// generateRotateInstructions defines the rotates, shifts and SWAP,
// 0x00 - 0x3F.
func generateRotateInstructions() {
	// 0x00 - 0x07 - RLC r
	generateModifier(0x00, "RLC", (*CPU).rotateLeft)
	// 0x08 - 0x0F - RRC r
	generateModifier(0x08, "RRC", (*CPU).rotateRight)
	// 0x10 - 0x17 - RL r
	generateModifier(0x10, "RL", (*CPU).rotateLeftThroughCarry)
	// 0x18 - 0x1F - RR r
	generateModifier(0x18, "RR", (*CPU).rotateRightThroughCarry)
	// 0x20 - 0x27 - SLA r
	generateModifier(0x20, "SLA", (*CPU).shiftLeftArithmetic)
	// 0x28 - 0x2F - SRA r
	generateModifier(0x28, "SRA", (*CPU).shiftRightArithmetic)
	// 0x30 - 0x37 - SWAP r
	generateModifier(0x30, "SWAP", (*CPU).swap)
	// 0x38 - 0x3F - SRL r
	generateModifier(0x38, "SRL", (*CPU).shiftRightLogical)
}

// generateBitInstructions defines BIT, RES and SET, 0x40 - 0xFF.
func generateBitInstructions() {
	for b := uint8(0); b < 8; b++ {
		bit := b

		// 0x40 - 0x7F - BIT b, r
		for i := uint8(0); i < 8; i++ {
			index := i
			opcode := 0x40 | bit<<3 | index
			name := fmt.Sprintf("BIT %d, %s", bit, registerNames[index])
			if index == 6 {
				// BIT only reads (HL), so it takes a cycle less
				defineInstructionCB(opcode, name, func(c *CPU) uint8 {
					c.testBit(c.bus.Read(c.HL.Uint16()), bit)
					return 3
				})
				continue
			}
			defineInstructionCB(opcode, name, func(c *CPU) uint8 {
				c.testBit(*c.register(index), bit)
				return 2
			})
		}

		// 0x80 - 0xBF - RES b, r
		generateModifier(0x80|bit<<3, fmt.Sprintf("RES %d,", bit), func(c *CPU, value uint8) uint8 {
			return value &^ (1 << bit)
		})
		// 0xC0 - 0xFF - SET b, r
		generateModifier(0xC0|bit<<3, fmt.Sprintf("SET %d,", bit), func(c *CPU, value uint8) uint8 {
			return value | 1<<bit
		})
	}
}
