// Package timer provides an implementation of the Game Boy
// timer. It is used to generate interrupts at a specific
// frequency. The frequency can be configured using the
// types.TAC register.
package timer

import (
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/types"
)

// Bus is the view of the address space the timer needs.
type Bus interface {
	Read(address uint16) uint8
	Set(address uint16, value uint8)
	Reserve(address uint16, hook mmu.WriteHook)
}

// bits holds the bit of the system clock that drives TIMA for each
// of the four TAC frequencies, counted in machine cycles.
//
//	00 = 4096 Hz   (every 256 cycles)
//	01 = 262144 Hz (every 4 cycles)
//	10 = 65536 Hz  (every 16 cycles)
//	11 = 16384 Hz  (every 64 cycles)
var bits = [4]uint16{128, 2, 8, 32}

// Controller is a timer controller. It is used to generate
// interrupts at a specific frequency. The frequency can be
// configured using the types.TAC register.
//
// DIV is the upper byte of the system clock, so it increments
// every 64 machine cycles. TIMA increments on every falling edge
// of the selected clock bit while the timer is enabled.
type Controller struct {
	bus Bus
	irq *interrupts.Service

	clock      uint16 // system clock, in machine cycles
	currentBit uint16
	lastBit    bool
	Enabled    bool

	// TIMA reads 0 for one cycle after overflowing, before
	// being reloaded from TMA.
	reloading bool
}

// NewController returns a new timer controller.
func NewController(bus Bus, irq *interrupts.Service) *Controller {
	c := &Controller{
		bus: bus,
		irq: irq,
	}

	// writing any value to DIV resets the system clock
	bus.Reserve(types.DIV, func(uint8) uint8 {
		// resetting the clock may produce a falling edge
		if c.Enabled && c.clock&c.currentBit != 0 {
			c.increment()
		}
		c.clock = 0
		c.lastBit = false
		return 0
	})
	bus.Reserve(types.TIMA, func(v uint8) uint8 {
		// a write during the reload cycle cancels the reload
		c.reloading = false
		return v
	})
	bus.Reserve(types.TAC, func(v uint8) uint8 {
		c.control(v)
		return v | 0xF8
	})

	c.Reset()
	return c
}

// Reset restarts the system clock and disables the timer.
func (c *Controller) Reset() {
	c.clock = 0
	c.lastBit = false
	c.reloading = false
	c.control(0)
	c.bus.Set(types.TAC, 0xF8)
}

// control applies a new TAC value.
func (c *Controller) control(v uint8) {
	wasEnabled, oldBit := c.Enabled, c.currentBit

	c.currentBit = bits[v&0b11]
	c.Enabled = v&types.Bit2 != 0

	// disabling the timer or switching to a bit that is low
	// while the old one was high is seen as a falling edge
	if wasEnabled && c.clock&oldBit != 0 {
		if !c.Enabled || c.clock&c.currentBit == 0 {
			c.increment()
		}
	}
	c.lastBit = c.Enabled && c.clock&c.currentBit != 0
}

// Step implements types.Peripheral.
func (c *Controller) Step(cycles uint8) {
	for i := uint8(0); i < cycles; i++ {
		c.tick()
	}
}

// tick advances the timer by a single machine cycle.
func (c *Controller) tick() {
	if c.reloading {
		c.reloading = false
		c.bus.Set(types.TIMA, c.bus.Read(types.TMA))
		c.irq.Request(interrupts.TimerFlag)
	}

	c.clock++
	c.bus.Set(types.DIV, uint8(c.clock>>6))

	// detect a falling edge
	newBit := c.Enabled && c.clock&c.currentBit != 0
	if !newBit && c.lastBit {
		c.increment()
	}
	c.lastBit = newBit
}

// increment increments TIMA, scheduling a reload on overflow.
func (c *Controller) increment() {
	tima := c.bus.Read(types.TIMA) + 1
	c.bus.Set(types.TIMA, tima)
	if tima == 0 {
		c.reloading = true
	}
}

// Clock returns the system clock in machine cycles.
func (c *Controller) Clock() uint16 {
	return c.clock
}

var _ types.Peripheral = (*Controller)(nil)
