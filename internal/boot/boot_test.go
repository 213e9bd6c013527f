package boot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBootROM(t *testing.T) {
	t.Run("invalid length", func(t *testing.T) {
		_, err := LoadBootROM(make([]byte, 0x900))
		assert.ErrorIs(t, err, ErrInvalidLength)
	})
	t.Run("unknown", func(t *testing.T) {
		b := make([]byte, Size)
		b[0x10] = 0x42
		r, err := LoadBootROM(b)
		require.NoError(t, err)

		assert.Equal(t, uint8(0x42), r.Read(0x10))
		assert.Equal(t, "unknown", r.Model())
		assert.Len(t, r.Checksum(), 32)
	})
	t.Run("input is copied", func(t *testing.T) {
		b := make([]byte, Size)
		r, err := LoadBootROM(b)
		require.NoError(t, err)

		b[0] = 0xFF
		assert.Equal(t, uint8(0x00), r.Read(0))
	})
}

func TestDefault(t *testing.T) {
	r := Default()
	assert.Equal(t, "built-in", r.Model())
	assert.Equal(t, uint8(0x31), r.Read(0x00))
	// the overlay must end by unmapping itself right before 0x0100
	assert.Equal(t, uint8(0xE0), r.Read(0xFE))
	assert.Equal(t, uint8(0x50), r.Read(0xFF))
}

func TestNilROM(t *testing.T) {
	var r *ROM
	assert.Equal(t, "none", r.Model())
	assert.Equal(t, "", r.Checksum())
}
