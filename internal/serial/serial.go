// Package serial implements the serial port of the Game Boy. Only
// the internal clock is emulated: every transfer started with SC
// bit 7 and bit 0 set shifts SB out to the attached Device, one bit
// every 128 machine cycles, and raises the serial interrupt once
// all 8 bits have been exchanged.
package serial

import (
	"io"

	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/mmu"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

const (
	// CyclesPerBit is the number of machine cycles to transfer a
	// single bit at 8192 Hz.
	CyclesPerBit = 128
)

// Bus is the view of the address space the serial port needs.
type Bus interface {
	Read(address uint16) uint8
	Set(address uint16, value uint8)
	Reserve(address uint16, hook mmu.WriteHook)
}

// Controller is the serial controller. It is responsible for sending and
// receiving data to and from devices.
// Before a transfer, data holds the next byte to be sent. AKA types.SB
// During a transfer, it has a mix of the incoming data and the outgoing data.
// each bit, the leftmost bit of data is sent to the attached device, and
// shifted out of data, and the incoming bit is shifted into data.
//
// example:
//
//	Before : data = o7 o6 o5 o4 o3 o2 o1 o0
//	Bit 1  : data = o6 o5 o4 o3 o2 o1 o0 i0
//	Bit 2  : data = o5 o4 o3 o2 o1 o0 i0 i1
//	...
//	Bit 8  : data = i0 i1 i2 i3 i4 i5 i6 i7
//
// Where o0-o7 are the outgoing bits, and i0-i7 are the incoming bits.
type Controller struct {
	count           uint8  // the number of bits that have been transferred.
	cycles          uint16 // cycles until the next bit is transferred.
	TransferRequest bool   // if true, a transfer is in progress.

	bus            Bus
	irq            *interrupts.Service
	AttachedDevice Device // the device that is attached to this controller.

	// Output receives every byte the moment its transfer starts.
	// Test programs print their results this way.
	Output io.Writer
	Log    log.Logger
}

// NewController creates a new Controller. By default, the Controller
// is attached to a nullDevice, which acts as if there is no device
// attached. If you want to attach a device, use Controller.Attach.
func NewController(bus Bus, irq *interrupts.Service) *Controller {
	c := &Controller{
		bus:            bus,
		irq:            irq,
		AttachedDevice: nullDevice{},
		Output:         io.Discard,
		Log:            log.NewNullLogger(),
	}
	bus.Reserve(types.SC, func(v uint8) uint8 {
		// only the internal clock is driven
		if v&types.Bit7 != 0 && v&types.Bit0 != 0 {
			c.start()
		} else {
			c.TransferRequest = false
		}
		return v | 0x7E // bits 1-6 are always set
	})

	c.Reset()
	return c
}

// Attach attaches a Device to the Controller. A nil Device detaches
// the current one.
func (c *Controller) Attach(d Device) {
	if d == nil {
		d = nullDevice{}
	}
	c.AttachedDevice = d
}

// Reset aborts any transfer in progress.
func (c *Controller) Reset() {
	c.TransferRequest = false
	c.count = 0
	c.cycles = 0
	c.bus.Set(types.SC, 0x7E)
}

// start begins the transfer of SB.
func (c *Controller) start() {
	data := c.bus.Read(types.SB)
	if _, err := c.Output.Write([]byte{data}); err != nil {
		c.Log.Errorf("serial: writing output: %v", err)
	}
	c.TransferRequest = true
	c.count = 0
	c.cycles = CyclesPerBit
}

// Step implements types.Peripheral.
func (c *Controller) Step(cycles uint8) {
	for i := uint8(0); i < cycles && c.TransferRequest; i++ {
		if c.cycles--; c.cycles == 0 {
			c.cycles = CyclesPerBit
			c.transferBit()
		}
	}
}

// transferBit exchanges the leftmost bit of SB with the attached device.
func (c *Controller) transferBit() {
	data := c.bus.Read(types.SB)
	bit := c.AttachedDevice.Send()
	c.AttachedDevice.Receive(data&types.Bit7 != 0)

	data <<= 1
	if bit {
		data |= 1
	}
	c.bus.Set(types.SB, data)

	if c.count++; c.count == 8 {
		c.count = 0
		c.TransferRequest = false
		c.bus.Set(types.SC, c.bus.Read(types.SC)&^types.Bit7)
		c.irq.Request(interrupts.SerialFlag)
	}
}

var _ types.Peripheral = (*Controller)(nil)
