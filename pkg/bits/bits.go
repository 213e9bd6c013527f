// Package bits provides small helpers for the bit twiddling that is
// scattered throughout the emulator.
package bits

import "golang.org/x/exp/constraints"

// Val returns the value of the bit at the given index.
func Val[T constraints.Unsigned](b T, i uint8) T {
	return (b >> i) & 1
}

// Reset resets the bit at the given index.
func Reset[T constraints.Unsigned](b T, i uint8) T {
	return b &^ (1 << i)
}

// Set sets the bit at the given index.
func Set[T constraints.Unsigned](b T, i uint8) T {
	return b | (1 << i)
}

// Test tests the bit at the given index.
func Test[T constraints.Unsigned](b T, i uint8) bool {
	return (b>>i)&1 != 0
}

// Join combines a high and a low byte into a little endian 16-bit word.
func Join(high, low uint8) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// Split splits a 16-bit word into its high and low bytes.
func Split(value uint16) (high, low uint8) {
	return uint8(value >> 8), uint8(value)
}

// Clamp restricts value to the closed range [min, max].
func Clamp[T constraints.Integer | constraints.Float](min, value, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
