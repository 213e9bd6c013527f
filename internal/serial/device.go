package serial

// Device is a device that can be attached to the Controller.
// Bits are exchanged most significant first.
type Device interface {
	Receive(bool)
	Send() bool
}

// nullDevice is an implementation of Device that
// simply returns true on Send and does nothing on
// Receive. This is most commonly used for when no
// device is attached to the Controller.
type nullDevice struct{}

// Receive does nothing.
func (n nullDevice) Receive(bool) {}

// Send always returns true.
func (n nullDevice) Send() bool { return true }

// Loopback is a Device that echoes every bit it receives one bit
// later, as if the link cable was plugged into itself. The first
// bit sent is 1.
type Loopback struct {
	last bool
}

// NewLoopback returns a new Loopback device.
func NewLoopback() *Loopback {
	return &Loopback{last: true}
}

// Receive records the bit to send back.
func (l *Loopback) Receive(bit bool) { l.last = bit }

// Send returns the last bit received.
func (l *Loopback) Send() bool { return l.last }
