package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/types"
)

func newTestJoypad() (*State, *mmu.MMU) {
	m := mmu.NewMMU(nil, nil)
	return New(m, interrupts.NewService(m)), m
}

func TestState_Select(t *testing.T) {
	s, m := newTestJoypad()
	assert.Equal(t, uint8(0xFF), m.Read(types.P1), "nothing selected")

	s.Press(ButtonA)
	s.Press(ButtonDown)

	tests := []struct {
		name string
		sel  uint8
		want uint8
	}{
		{"none", 0x30, 0xFF},
		{"directions", 0x20, 0xE7},
		{"actions", 0x10, 0xDE},
		{"both", 0x00, 0xC6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.Write(types.P1, tt.sel|0x0F)
			assert.Equal(t, tt.want, m.Read(types.P1))
		})
	}
}

func TestState_PressRelease(t *testing.T) {
	s, m := newTestJoypad()
	m.Write(types.P1, 0x10)

	s.Press(ButtonStart)
	assert.True(t, s.Pressed(ButtonStart))
	assert.Equal(t, uint8(0xD7), m.Read(types.P1))
	assert.NotZero(t, m.Read(types.IF)&interrupts.JoypadFlag)

	s.Release(ButtonStart)
	assert.False(t, s.Pressed(ButtonStart))
	assert.Equal(t, uint8(0xDF), m.Read(types.P1))

	t.Run("interrupt only when selected", func(t *testing.T) {
		m.Set(types.IF, 0)
		s.Press(ButtonUp)
		assert.Zero(t, m.Read(types.IF)&interrupts.JoypadFlag)
	})
	t.Run("held button does not interrupt again", func(t *testing.T) {
		s.Press(ButtonB)
		m.Set(types.IF, 0)
		s.Press(ButtonB)
		assert.Zero(t, m.Read(types.IF)&interrupts.JoypadFlag)
	})
	t.Run("reset", func(t *testing.T) {
		s.Reset()
		assert.Equal(t, uint8(0), s.State)
		assert.Equal(t, uint8(0xFF), m.Read(types.P1))
	})
}

func TestButtonName(t *testing.T) {
	for b := ButtonA; b <= ButtonDown; b++ {
		parsed, err := ParseButton(ButtonName(b))
		require.NoError(t, err)
		assert.Equal(t, b, parsed)
	}
	assert.Equal(t, "Button(9)", ButtonName(9))

	_, err := ParseButton("Turbo")
	assert.Error(t, err)
}
