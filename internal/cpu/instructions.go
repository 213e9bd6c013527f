package cpu

import (
	"fmt"

	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/bits"
)

// Instruction represents a single instruction of the CPU.
type Instruction struct {
	name string           // name of the instruction
	fn   func(*CPU) uint8 // fn executes the instruction, returning the machine cycles it took
}

// Name returns the mnemonic of the instruction.
func (i Instruction) Name() string {
	return i.name
}

// Implemented reports whether the instruction has a handler.
func (i Instruction) Implemented() bool {
	return i.fn != nil
}

// InstructionSet holds the first 256 instructions. The 11 opcodes that
// the LR35902 does not define (0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC,
// 0xED, 0xF4, 0xFC and 0xFD) are left without a handler.
var InstructionSet = [256]Instruction{
	0x00: {"NOP", func(c *CPU) uint8 { return 1 }},
	0x02: {"LD (BC), A", func(c *CPU) uint8 {
		c.bus.Write(c.BC.Uint16(), c.A)
		return 2
	}},
	0x07: {"RLCA", func(c *CPU) uint8 {
		c.rotateAccumulator((*CPU).rotateLeft)
		return 1
	}},
	0x08: {"LD (a16), SP", func(c *CPU) uint8 {
		address := c.readOperand16()
		high, low := bits.Split(c.SP)
		c.bus.Write(address, low)
		c.bus.Write(address+1, high)
		return 5
	}},
	0x0A: {"LD A, (BC)", func(c *CPU) uint8 {
		c.A = c.bus.Read(c.BC.Uint16())
		return 2
	}},
	0x0F: {"RRCA", func(c *CPU) uint8 {
		c.rotateAccumulator((*CPU).rotateRight)
		return 1
	}},
	0x10: {"STOP", func(c *CPU) uint8 {
		// STOP is followed by a padding byte
		c.readOperand()
		// reset div clock
		c.bus.Write(types.DIV, 0)
		c.mode = ModeStop
		return 1
	}},
	0x12: {"LD (DE), A", func(c *CPU) uint8 {
		c.bus.Write(c.DE.Uint16(), c.A)
		return 2
	}},
	0x17: {"RLA", func(c *CPU) uint8 {
		c.rotateAccumulator((*CPU).rotateLeftThroughCarry)
		return 1
	}},
	0x18: {"JR r8", func(c *CPU) uint8 {
		return c.jumpRelative(true)
	}},
	0x1A: {"LD A, (DE)", func(c *CPU) uint8 {
		c.A = c.bus.Read(c.DE.Uint16())
		return 2
	}},
	0x1F: {"RRA", func(c *CPU) uint8 {
		c.rotateAccumulator((*CPU).rotateRightThroughCarry)
		return 1
	}},
	0x22: {"LD (HL+), A", func(c *CPU) uint8 {
		c.bus.Write(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() + 1)
		return 2
	}},
	0x27: {"DAA", func(c *CPU) uint8 {
		c.decimalAdjust()
		return 1
	}},
	0x2A: {"LD A, (HL+)", func(c *CPU) uint8 {
		c.A = c.bus.Read(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
		return 2
	}},
	0x2F: {"CPL", func(c *CPU) uint8 {
		c.A = 0xFF ^ c.A
		c.setFlag(types.FlagSubtract)
		c.setFlag(types.FlagHalfCarry)
		return 1
	}},
	0x31: {"LD SP, d16", func(c *CPU) uint8 {
		c.SP = c.readOperand16()
		return 3
	}},
	0x32: {"LD (HL-), A", func(c *CPU) uint8 {
		c.bus.Write(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() - 1)
		return 2
	}},
	0x33: {"INC SP", func(c *CPU) uint8 {
		c.SP++
		return 2
	}},
	0x34: {"INC (HL)", func(c *CPU) uint8 {
		c.bus.Write(c.HL.Uint16(), c.increment(c.bus.Read(c.HL.Uint16())))
		return 3
	}},
	0x35: {"DEC (HL)", func(c *CPU) uint8 {
		c.bus.Write(c.HL.Uint16(), c.decrement(c.bus.Read(c.HL.Uint16())))
		return 3
	}},
	0x36: {"LD (HL), d8", func(c *CPU) uint8 {
		c.bus.Write(c.HL.Uint16(), c.readOperand())
		return 3
	}},
	0x37: {"SCF", func(c *CPU) uint8 {
		c.setFlag(types.FlagCarry)
		c.clearFlag(types.FlagSubtract)
		c.clearFlag(types.FlagHalfCarry)
		return 1
	}},
	0x39: {"ADD HL, SP", func(c *CPU) uint8 {
		c.addHL(c.SP)
		return 2
	}},
	0x3A: {"LD A, (HL-)", func(c *CPU) uint8 {
		c.A = c.bus.Read(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
		return 2
	}},
	0x3B: {"DEC SP", func(c *CPU) uint8 {
		c.SP--
		return 2
	}},
	0x3F: {"CCF", func(c *CPU) uint8 {
		if c.isFlagSet(types.FlagCarry) {
			c.clearFlag(types.FlagCarry)
		} else {
			c.setFlag(types.FlagCarry)
		}
		c.clearFlag(types.FlagSubtract)
		c.clearFlag(types.FlagHalfCarry)
		return 1
	}},
	0x76: {"HALT", func(c *CPU) uint8 {
		if !c.IRQ.IME && c.IRQ.HasInterrupts() {
			c.mode = ModeHaltBug
		} else {
			c.mode = ModeHalt
		}
		return 1
	}},
	0xC3: {"JP a16", func(c *CPU) uint8 {
		return c.jumpAbsolute(true)
	}},
	0xC9: {"RET", func(c *CPU) uint8 {
		return c.ret()
	}},
	0xCB: {"PREFIX CB", func(c *CPU) uint8 {
		return c.prefixCB()
	}},
	0xCD: {"CALL a16", func(c *CPU) uint8 {
		return c.call(true)
	}},
	0xD9: {"RETI", func(c *CPU) uint8 {
		c.IRQ.IME = true
		return c.ret()
	}},
	0xE0: {"LDH (a8), A", func(c *CPU) uint8 {
		c.bus.Write(0xFF00+uint16(c.readOperand()), c.A)
		return 3
	}},
	0xE2: {"LD (C), A", func(c *CPU) uint8 {
		c.bus.Write(0xFF00+uint16(c.C), c.A)
		return 2
	}},
	0xE8: {"ADD SP, r8", func(c *CPU) uint8 {
		c.SP = c.addSPSigned()
		return 4
	}},
	0xE9: {"JP HL", func(c *CPU) uint8 {
		c.PC = c.HL.Uint16()
		return 1
	}},
	0xEA: {"LD (a16), A", func(c *CPU) uint8 {
		c.bus.Write(c.readOperand16(), c.A)
		return 4
	}},
	0xF0: {"LDH A, (a8)", func(c *CPU) uint8 {
		c.A = c.bus.Read(0xFF00 + uint16(c.readOperand()))
		return 3
	}},
	0xF2: {"LD A, (C)", func(c *CPU) uint8 {
		c.A = c.bus.Read(0xFF00 + uint16(c.C))
		return 2
	}},
	0xF3: {"DI", func(c *CPU) uint8 {
		c.IRQ.IME = false
		if c.mode == ModeEnableIME {
			c.mode = ModeNormal
		}
		return 1
	}},
	0xF8: {"LD HL, SP+r8", func(c *CPU) uint8 {
		c.HL.SetUint16(c.addSPSigned())
		return 3
	}},
	0xF9: {"LD SP, HL", func(c *CPU) uint8 {
		c.SP = c.HL.Uint16()
		return 2
	}},
	0xFA: {"LD A, (a16)", func(c *CPU) uint8 {
		c.A = c.bus.Read(c.readOperand16())
		return 4
	}},
	0xFB: {"EI", func(c *CPU) uint8 {
		if !c.IRQ.IME {
			c.mode = ModeEnableIME
		}
		return 1
	}},
}

// pairNames are the names of the register pairs encoded in bits 4-5 of
// an opcode, with SP in place of AF.
var pairNames = [4]string{"BC", "DE", "HL", "SP"}

// defineInstruction defines the instruction in the InstructionSet, with
// the provided opcode.
func defineInstruction(opcode uint8, name string, fn func(*CPU) uint8) {
	InstructionSet[opcode] = Instruction{name: name, fn: fn}
}

func init() {
	generatePairInstructions()
	generateRegisterInstructions()
	generateLoadInstructions()
	generateALUInstructions()
	generateControlInstructions()
}

// generatePairInstructions defines the 16-bit loads, increments,
// decrements and additions on BC, DE and HL, as well as PUSH and POP.
func generatePairInstructions() {
	for i := uint8(0); i < 3; i++ {
		index := i
		pair := func(c *CPU) *types.RegisterPair {
			return [3]*types.RegisterPair{c.BC, c.DE, c.HL}[index]
		}
		name := pairNames[index]

		// 0x01, 0x11, 0x21 - LD nn, d16
		defineInstruction(0x01+index<<4, fmt.Sprintf("LD %s, d16", name), func(c *CPU) uint8 {
			pair(c).SetUint16(c.readOperand16())
			return 3
		})
		// 0x03, 0x13, 0x23 - INC nn
		defineInstruction(0x03+index<<4, fmt.Sprintf("INC %s", name), func(c *CPU) uint8 {
			p := pair(c)
			p.SetUint16(p.Uint16() + 1)
			return 2
		})
		// 0x09, 0x19, 0x29 - ADD HL, nn
		defineInstruction(0x09+index<<4, fmt.Sprintf("ADD HL, %s", name), func(c *CPU) uint8 {
			c.addHL(pair(c).Uint16())
			return 2
		})
		// 0x0B, 0x1B, 0x2B - DEC nn
		defineInstruction(0x0B+index<<4, fmt.Sprintf("DEC %s", name), func(c *CPU) uint8 {
			p := pair(c)
			p.SetUint16(p.Uint16() - 1)
			return 2
		})
	}

	for i := uint8(0); i < 4; i++ {
		index := i
		pair := func(c *CPU) *types.RegisterPair {
			return [4]*types.RegisterPair{c.BC, c.DE, c.HL, c.AF}[index]
		}
		name := [4]string{"BC", "DE", "HL", "AF"}[index]

		// 0xC1, 0xD1, 0xE1, 0xF1 - POP nn
		defineInstruction(0xC1+index<<4, fmt.Sprintf("POP %s", name), func(c *CPU) uint8 {
			pair(c).SetUint16(c.popStack())
			// the lower nibble of F can never be set
			c.F &= types.FlagMask
			return 3
		})
		// 0xC5, 0xD5, 0xE5, 0xF5 - PUSH nn
		defineInstruction(0xC5+index<<4, fmt.Sprintf("PUSH %s", name), func(c *CPU) uint8 {
			c.pushStack(pair(c).Uint16())
			return 4
		})
	}
}

// generateRegisterInstructions defines INC r, DEC r and LD r, d8 for
// every 8-bit register.
func generateRegisterInstructions() {
	for i := uint8(0); i < 8; i++ {
		// (HL) variants are defined in the instruction set
		if i == 6 {
			continue
		}
		index := i
		name := registerNames[index]

		// 0x04, 0x0C, ... 0x3C - INC r
		defineInstruction(0x04+index<<3, fmt.Sprintf("INC %s", name), func(c *CPU) uint8 {
			r := c.register(index)
			*r = c.increment(*r)
			return 1
		})
		// 0x05, 0x0D, ... 0x3D - DEC r
		defineInstruction(0x05+index<<3, fmt.Sprintf("DEC %s", name), func(c *CPU) uint8 {
			r := c.register(index)
			*r = c.decrement(*r)
			return 1
		})
		// 0x06, 0x0E, ... 0x3E - LD r, d8
		defineInstruction(0x06+index<<3, fmt.Sprintf("LD %s, d8", name), func(c *CPU) uint8 {
			*c.register(index) = c.readOperand()
			return 2
		})
	}
}

// generateLoadInstructions defines the register to register loads
// 0x40 - 0x7F, excluding 0x76 (HALT).
func generateLoadInstructions() {
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 | dst<<3 | src
			if opcode == 0x76 {
				continue
			}
			d, s := dst, src
			name := fmt.Sprintf("LD %s, %s", registerNames[d], registerNames[s])

			switch {
			case d == 6: // LD (HL), r
				defineInstruction(opcode, name, func(c *CPU) uint8 {
					c.bus.Write(c.HL.Uint16(), *c.register(s))
					return 2
				})
			case s == 6: // LD r, (HL)
				defineInstruction(opcode, name, func(c *CPU) uint8 {
					*c.register(d) = c.bus.Read(c.HL.Uint16())
					return 2
				})
			default:
				defineInstruction(opcode, name, func(c *CPU) uint8 {
					*c.register(d) = *c.register(s)
					return 1
				})
			}
		}
	}
}

// generateALUInstructions defines the arithmetic instructions on the A
// Register 0x80 - 0xBF, and their immediate forms.
func generateALUInstructions() {
	for op := uint8(0); op < 8; op++ {
		o := op

		// 0xC6, 0xCE, ... 0xFE - ALU d8
		defineInstruction(0xC6|o<<3, fmt.Sprintf("%s d8", aluNames[o]), func(c *CPU) uint8 {
			c.alu(o, c.readOperand())
			return 2
		})

		for src := uint8(0); src < 8; src++ {
			s := src
			name := fmt.Sprintf("%s %s", aluNames[o], registerNames[s])
			if s == 6 {
				defineInstruction(0x80|o<<3|s, name, func(c *CPU) uint8 {
					c.alu(o, c.bus.Read(c.HL.Uint16()))
					return 2
				})
				continue
			}
			defineInstruction(0x80|o<<3|s, name, func(c *CPU) uint8 {
				c.alu(o, *c.register(s))
				return 1
			})
		}
	}
}

// generateControlInstructions defines the conditional jumps, calls and
// returns, and the restarts.
func generateControlInstructions() {
	for i := uint8(0); i < 4; i++ {
		cc := i
		name := conditionNames[cc]

		// 0x20, 0x28, 0x30, 0x38 - JR cc, r8
		defineInstruction(0x20|cc<<3, fmt.Sprintf("JR %s, r8", name), func(c *CPU) uint8 {
			return c.jumpRelative(c.condition(cc))
		})
		// 0xC0, 0xC8, 0xD0, 0xD8 - RET cc
		defineInstruction(0xC0|cc<<3, fmt.Sprintf("RET %s", name), func(c *CPU) uint8 {
			return c.retConditional(c.condition(cc))
		})
		// 0xC2, 0xCA, 0xD2, 0xDA - JP cc, a16
		defineInstruction(0xC2|cc<<3, fmt.Sprintf("JP %s, a16", name), func(c *CPU) uint8 {
			return c.jumpAbsolute(c.condition(cc))
		})
		// 0xC4, 0xCC, 0xD4, 0xDC - CALL cc, a16
		defineInstruction(0xC4|cc<<3, fmt.Sprintf("CALL %s, a16", name), func(c *CPU) uint8 {
			return c.call(c.condition(cc))
		})
	}

	for i := uint8(0); i < 8; i++ {
		address := uint16(i) * 8
		// 0xC7, 0xCF, ... 0xFF - RST n
		defineInstruction(0xC7|i<<3, fmt.Sprintf("RST %02XH", address), func(c *CPU) uint8 {
			return c.restart(address)
		})
	}
}
