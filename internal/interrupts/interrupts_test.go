package interrupts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thelolagemann/gbcore/internal/types"
)

type memory map[uint16]uint8

func (m memory) Read(address uint16) uint8        { return m[address] }
func (m memory) Set(address uint16, value uint8) { m[address] = value }

func TestService(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		mem := memory{}
		s := NewService(mem)
		s.Request(TimerFlag)
		s.Request(VBlankFlag)

		assert.Equal(t, uint8(0x05), mem[types.IF])
		assert.False(t, s.HasInterrupts(), "nothing is enabled")
	})
	t.Run("priority", func(t *testing.T) {
		mem := memory{types.IE: 0x1F, types.IF: JoypadFlag | LCDFlag}
		s := NewService(mem)

		vector, ok := s.Vector()
		assert.True(t, ok)
		assert.Equal(t, uint16(0x48), vector)
		assert.Equal(t, uint8(JoypadFlag), mem[types.IF])

		vector, ok = s.Vector()
		assert.True(t, ok)
		assert.Equal(t, uint16(0x60), vector)

		_, ok = s.Vector()
		assert.False(t, ok)
	})
	t.Run("disabled interrupts are ignored", func(t *testing.T) {
		mem := memory{types.IE: SerialFlag, types.IF: TimerFlag}
		s := NewService(mem)
		assert.Equal(t, uint8(0), s.Pending())
	})
}
