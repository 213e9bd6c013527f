// Package cpu implements the Sharp LR35902 processor of the Game Boy.
// Instructions are dispatched through two fixed tables, InstructionSet
// and InstructionSetCB, and report their cost in machine cycles.
package cpu

import (
	"fmt"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/bits"
	"github.com/thelolagemann/gbcore/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the CPU in Hz.
	ClockSpeed = 4194304
	// CycleSpeed is the number of machine cycles per second.
	CycleSpeed = ClockSpeed / 4
)

type mode = uint8

const (
	// ModeNormal is the normal CPU mode.
	ModeNormal mode = iota
	// ModeHalt is the halt CPU mode.
	ModeHalt
	// ModeStop is the stop CPU mode.
	ModeStop
	// ModeHaltBug is entered when HALT is executed with the IME
	// disabled and an interrupt already pending.
	ModeHaltBug
	// ModeEnableIME is the enable IME CPU mode, the IME is
	// enabled after the instruction following EI.
	ModeEnableIME
)

// Bus is the memory the CPU executes against.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// busMemory lets an interrupt service run directly over a Bus.
type busMemory struct {
	Bus
}

func (b busMemory) Set(address uint16, value uint8) {
	b.Write(address, value)
}

// CPU represents the Gameboy CPU. It is responsible for executing instructions.
type CPU struct {
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16
	// SP is the stack pointer, it points to the top of the stack.
	SP uint16
	// Registers contains the 8-bit registers, as well as the 16-bit register pairs.
	types.Registers

	// Debug traces every executed instruction through the logger.
	Debug bool

	bus Bus
	IRQ *interrupts.Service
	log log.Logger

	cycles uint64
	mode   mode
	fault  error
}

// NewCPU creates a new CPU instance executing against bus. When irq is
// nil, an interrupt service working directly over bus is created.
func NewCPU(bus Bus, irq *interrupts.Service) *CPU {
	if irq == nil {
		irq = interrupts.NewService(busMemory{bus})
	}
	c := &CPU{
		bus: bus,
		IRQ: irq,
		log: log.NewNullLogger(),
	}
	// create register pairs
	c.BC = &types.RegisterPair{High: &c.B, Low: &c.C}
	c.DE = &types.RegisterPair{High: &c.D, Low: &c.E}
	c.HL = &types.RegisterPair{High: &c.H, Low: &c.L}
	c.AF = &types.RegisterPair{High: &c.A, Low: &c.F}

	c.Reset()
	return c
}

// SetLogger sets the logger used to trace instructions.
func (c *CPU) SetLogger(l log.Logger) {
	c.log = l
}

// Reset puts the CPU in its power-on state, with the program counter
// at 0x0000.
func (c *CPU) Reset() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0000

	c.IRQ.Reset()
	c.cycles = 0
	c.mode = ModeNormal
	c.fault = nil
}

// Cycles returns the number of machine cycles executed since the last Reset.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool {
	return c.mode == ModeHalt || c.mode == ModeStop
}

// Step executes a single instruction, services any pending interrupt
// and returns the number of machine cycles that have elapsed. Once the
// CPU has faulted, every subsequent Step returns the same error.
func (c *CPU) Step() (uint8, error) {
	if c.fault != nil {
		return 0, c.fault
	}

	cycles, err := c.step()
	c.cycles += uint64(cycles)
	if err != nil {
		c.fault = err
		return cycles, err
	}

	return cycles, nil
}

func (c *CPU) step() (uint8, error) {
	switch c.mode {
	case ModeHalt:
		// in halt mode the CPU idles until an interrupt is pending, the IME is ignored
		if !c.IRQ.HasInterrupts() {
			return 1, nil
		}
		c.mode = ModeNormal
		if cycles := c.executeInterrupt(); cycles > 0 {
			return cycles, nil
		}
	case ModeStop:
		// stop is only left once the joypad has requested an interrupt
		if c.bus.Read(types.IF)&interrupts.JoypadFlag == 0 {
			return 1, nil
		}
		c.mode = ModeNormal
		if cycles := c.executeInterrupt(); cycles > 0 {
			return cycles, nil
		}
	case ModeEnableIME:
		c.IRQ.IME = true
		c.mode = ModeNormal
	}

	cycles, err := c.runInstruction()
	if err != nil {
		return 0, err
	}

	return cycles + c.executeInterrupt(), nil
}

// readInstruction reads the next opcode from memory.
func (c *CPU) readInstruction() uint8 {
	value := c.bus.Read(c.PC)
	if c.mode == ModeHaltBug {
		// the PC fails to increment, so the byte after HALT is read twice
		c.mode = ModeNormal
		return value
	}
	c.PC++
	return value
}

// readOperand reads the next operand from memory.
func (c *CPU) readOperand() uint8 {
	value := c.bus.Read(c.PC)
	c.PC++
	return value
}

// readOperand16 reads the next two operands as a little endian word.
func (c *CPU) readOperand16() uint16 {
	low := c.readOperand()
	high := c.readOperand()
	return bits.Join(high, low)
}

func (c *CPU) runInstruction() (uint8, error) {
	currentPC := c.PC
	opcode := c.readInstruction()
	instruction := InstructionSet[opcode]
	if instruction.fn == nil {
		c.PC = currentPC
		return 0, &OpcodeError{Opcode: opcode, PC: currentPC}
	}

	cycles := instruction.fn(c)
	if c.Debug {
		c.log.Debugf("%04X %-16s A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X (%d cycles)",
			currentPC, instruction.name, c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, cycles)
	}

	return cycles, nil
}

// prefixCB reads the second byte of a CB prefixed instruction and
// executes it from InstructionSetCB.
func (c *CPU) prefixCB() uint8 {
	return InstructionSetCB[c.readOperand()].fn(c)
}

// executeInterrupt dispatches the highest priority pending interrupt
// when the IME is enabled, returning the cycles it took.
func (c *CPU) executeInterrupt() uint8 {
	if !c.IRQ.IME {
		return 0
	}
	vector, ok := c.IRQ.Vector()
	if !ok {
		return 0
	}

	c.IRQ.IME = false
	c.pushStack(c.PC)
	c.PC = vector

	return 5
}

// register returns a pointer to the 8-bit register encoded by index
// in an opcode. Index 6 encodes (HL) and has no register.
func (c *CPU) register(index uint8) *types.Register {
	switch index {
	case 0:
		return &c.B
	case 1:
		return &c.C
	case 2:
		return &c.D
	case 3:
		return &c.E
	case 4:
		return &c.H
	case 5:
		return &c.L
	case 7:
		return &c.A
	}
	panic(fmt.Sprintf("invalid register index: %d", index))
}

// registerNames are the operand names of each register index.
var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
