// Package joypad provides an implementation of the Game Boy
// joypad. The joypad is used to read the state of the buttons
// and the direction keys.
package joypad

import (
	"fmt"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/bits"
)

// Button represents a physical button on the Game Boy.
type Button = uint8

const (
	// ButtonA is the A button.
	ButtonA Button = iota
	// ButtonB is the B button.
	ButtonB
	// ButtonSelect is the Select button.
	ButtonSelect
	// ButtonStart is the Start button.
	ButtonStart
	// ButtonRight is the Right button.
	ButtonRight
	// ButtonLeft is the Left button.
	ButtonLeft
	// ButtonUp is the Up button.
	ButtonUp
	// ButtonDown is the Down button.
	ButtonDown
)

var buttonNames = [...]string{"A", "B", "Select", "Start", "Right", "Left", "Up", "Down"}

// ButtonName returns the name of b.
func ButtonName(b Button) string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", b)
}

// ParseButton returns the button with the given name.
func ParseButton(name string) (Button, error) {
	for i, n := range buttonNames {
		if n == name {
			return Button(i), nil
		}
	}
	return 0, fmt.Errorf("joypad: unknown button %q", name)
}

// Bus is the view of the address space the joypad needs.
type Bus interface {
	Read(address uint16) uint8
	Set(address uint16, value uint8)
	Reserve(address uint16, hook mmu.WriteHook)
}

// State represents the state of the joypad. Select either
// action or direction buttons by writing to the register,
// and then read out bits 0-3 to get the state of the buttons.
//
//	Bit 7 - Not used
//	Bit 6 - Not used
//	Bit 5 - P15 Select Button Keys      (0=Select)
//	Bit 4 - P14 Select Direction Keys   (0=Select)
//	Bit 3 - P13 Input Down  or Start    (0=Pressed) (Read Only)
//	Bit 2 - P12 Input Up    or Select   (0=Pressed) (Read Only)
//	Bit 1 - P11 Input Left  or Button B (0=Pressed) (Read Only)
//	Bit 0 - P10 Input Right or Button A (0=Pressed) (Read Only)
type State struct {
	// State is the current state of the joypad. The lower 4
	// bits hold the action buttons, and the upper 4 bits hold
	// the direction buttons. A 1 in a bit indicates that the
	// button is pressed.
	State uint8

	selected uint8 // bits 4 and 5 of the last write to P1
	bus      Bus
	irq      *interrupts.Service
}

// New returns a new joypad state.
func New(bus Bus, irq *interrupts.Service) *State {
	s := &State{
		bus: bus,
		irq: irq,
	}
	bus.Reserve(types.P1, func(v uint8) uint8 {
		s.selected = v & (types.Bit4 | types.Bit5)
		return s.value()
	})

	s.Reset()
	return s
}

// Reset releases every button and deselects both groups.
func (s *State) Reset() {
	s.State = 0
	s.selected = types.Bit4 | types.Bit5
	s.bus.Set(types.P1, s.value())
}

// value computes the P1 register from the selected groups.
func (s *State) value() uint8 {
	d := uint8(0xC0) | s.selected
	if s.selected&types.Bit4 == 0 {
		d |= s.State >> 4 & 0xF
	}
	if s.selected&types.Bit5 == 0 {
		d |= s.State & 0xF
	}

	// 0 = pressed
	return d ^ 0xF
}

// isSelected reports whether the group containing button is
// currently selected.
func (s *State) isSelected(button Button) bool {
	if button >= ButtonRight {
		return s.selected&types.Bit4 == 0
	}
	return s.selected&types.Bit5 == 0
}

// Press presses a button. A joypad interrupt is requested when the
// button was released and its group is selected.
func (s *State) Press(button Button) {
	if bits.Test(s.State, button) {
		return
	}
	s.State = bits.Set(s.State, button)
	s.bus.Set(types.P1, s.value())

	if s.isSelected(button) {
		s.irq.Request(interrupts.JoypadFlag)
	}
}

// Release releases a button.
func (s *State) Release(button Button) {
	s.State = bits.Reset(s.State, button)
	s.bus.Set(types.P1, s.value())
}

// Pressed reports whether button is held down.
func (s *State) Pressed(button Button) bool {
	return bits.Test(s.State, button)
}
