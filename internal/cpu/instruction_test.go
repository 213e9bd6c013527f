package cpu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/types"
)

const (
	testPC = 0xC000
	testHL = 0xC800
	testSP = 0xDFF0
)

// newTestCPU returns a CPU over a ready MMU, about to execute program
// from testPC.
func newTestCPU(program ...uint8) (*CPU, *mmu.MMU) {
	m := mmu.NewMMU(nil, nil)
	m.SetSystemReady(true)
	for i, b := range program {
		m.Write(testPC+uint16(i), b)
	}

	c := NewCPU(m, nil)
	c.PC = testPC
	c.SP = testSP
	c.HL.SetUint16(testHL)
	return c, m
}

var timings = [256]uint8{
	1, 3, 2, 2, 1, 1, 2, 1, 5, 2, 2, 2, 1, 1, 2, 1,
	0, 3, 2, 2, 1, 1, 2, 1, 3, 2, 2, 2, 1, 1, 2, 1,
	2, 3, 2, 2, 1, 1, 2, 1, 2, 2, 2, 2, 1, 1, 2, 1,
	2, 3, 2, 2, 3, 3, 3, 1, 2, 2, 2, 2, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	2, 2, 2, 2, 2, 2, 0, 2, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	2, 3, 3, 4, 3, 4, 2, 4, 2, 4, 3, 0, 3, 6, 2, 4,
	2, 3, 3, 0, 3, 4, 2, 4, 2, 4, 3, 0, 3, 0, 2, 4,
	3, 3, 2, 0, 0, 4, 2, 4, 4, 1, 4, 0, 0, 0, 2, 4,
	3, 3, 2, 1, 0, 4, 2, 4, 3, 2, 4, 1, 0, 0, 2, 4,
}

var cbTimings = [256]uint8{
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 3, 2, 2, 2, 2, 2, 2, 2, 3, 2,
	2, 2, 2, 2, 2, 2, 3, 2, 2, 2, 2, 2, 2, 2, 3, 2,
	2, 2, 2, 2, 2, 2, 3, 2, 2, 2, 2, 2, 2, 2, 3, 2,
	2, 2, 2, 2, 2, 2, 3, 2, 2, 2, 2, 2, 2, 2, 3, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
	2, 2, 2, 2, 2, 2, 4, 2, 2, 2, 2, 2, 2, 2, 4, 2,
}

// conditional returns the condition index of a conditional branch, and
// false for every other opcode.
func conditional(opcode uint8) (uint8, bool) {
	switch opcode {
	case 0x20, 0x28, 0x30, 0x38, // JR cc
		0xC0, 0xC8, 0xD0, 0xD8, // RET cc
		0xC2, 0xCA, 0xD2, 0xDA, // JP cc
		0xC4, 0xCC, 0xD4, 0xDC: // CALL cc
		return opcode >> 3 & 0x3, true
	}
	return 0, false
}

// flagsFor returns the F register that makes condition cc true or false.
func flagsFor(cc uint8, taken bool) uint8 {
	set := [4]uint8{0, types.FlagZero, 0, types.FlagCarry}[cc]
	clear := [4]uint8{types.FlagZero, 0, types.FlagCarry, 0}[cc]
	if taken {
		return set
	}
	return clear
}

func TestInstruction_Timing(t *testing.T) {
	for i, timing := range timings {
		if timing == 0 {
			continue
		}
		opcode := uint8(i)

		t.Run(InstructionSet[opcode].Name(), func(t *testing.T) {
			c, _ := newTestCPU(opcode)
			if cc, ok := conditional(opcode); ok {
				c.F = flagsFor(cc, false)
			}

			cycles, err := c.Step()
			require.NoError(t, err)
			assert.Equal(t, timing, cycles)
		})
	}

	for i, timing := range cbTimings {
		opcode := uint8(i)

		t.Run(InstructionSetCB[opcode].Name(), func(t *testing.T) {
			c, _ := newTestCPU(0xCB, opcode)

			cycles, err := c.Step()
			require.NoError(t, err)
			assert.Equal(t, timing, cycles)
			assert.Equal(t, uint16(testPC+2), c.PC)
		})
	}
}

func TestInstruction_TimingTaken(t *testing.T) {
	tests := map[uint8]uint8{
		0x20: 3, 0x28: 3, 0x30: 3, 0x38: 3,
		0xC0: 5, 0xC8: 5, 0xD0: 5, 0xD8: 5,
		0xC2: 4, 0xCA: 4, 0xD2: 4, 0xDA: 4,
		0xC4: 6, 0xCC: 6, 0xD4: 6, 0xDC: 6,
	}
	for opcode, timing := range tests {
		cc, _ := conditional(opcode)
		t.Run(InstructionSet[opcode].Name(), func(t *testing.T) {
			c, _ := newTestCPU(opcode)
			c.F = flagsFor(cc, true)

			cycles, err := c.Step()
			require.NoError(t, err)
			assert.Equal(t, timing, cycles)
		})
	}
}

func TestInstruction_Closed(t *testing.T) {
	illegal := map[uint8]bool{
		0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true, 0xEB: true,
		0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
	}
	implemented := 0
	for i := 0; i < 256; i++ {
		opcode := uint8(i)
		assert.Equalf(t, !illegal[opcode], InstructionSet[opcode].Implemented(), "0x%02X", opcode)
		assert.Truef(t, InstructionSetCB[opcode].Implemented(), "CB 0x%02X", opcode)
		if InstructionSet[opcode].Implemented() {
			implemented++
		}
	}
	assert.Equal(t, 245, implemented)
}

func TestInstruction_Names(t *testing.T) {
	tests := map[uint8]string{
		0x01: "LD BC, d16",
		0x3C: "INC A",
		0x46: "LD B, (HL)",
		0x6F: "LD L, A",
		0x96: "SUB (HL)",
		0xC1: "POP BC",
		0xD6: "SUB d8",
		0xF5: "PUSH AF",
		0xFF: "RST 38H",
	}
	for opcode, name := range tests {
		assert.Equal(t, name, InstructionSet[opcode].Name(), fmt.Sprintf("0x%02X", opcode))
	}
	assert.Equal(t, "BIT 7, H", InstructionSetCB[0x7C].Name())
	assert.Equal(t, "SET 0, (HL)", InstructionSetCB[0xC6].Name())
	assert.Equal(t, "SWAP A", InstructionSetCB[0x37].Name())
}
