// Package display provides the sinks the emulator presents its frames
// to. A Driver runs outside the emulation goroutine and receives frames
// through a Sink, which hands each one over as its own copy and never
// blocks the emulator.
package display

import (
	"context"
	"sync/atomic"

	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/ppu"
)

// Driver is the interface that wraps the basic methods for a
// display driver.
type Driver interface {
	// Start presents the frames received on frames until ctx is done,
	// frames is closed or the user closes the display. Button changes
	// are reported on pressed and released, and are never dropped.
	Start(ctx context.Context, frames <-chan *ppu.Frame, pressed, released chan<- joypad.Button) error
}

// Sink is a ppu.Listener that forwards frames to a Driver through a
// buffered channel. Frames that do not fit in the buffer are dropped.
type Sink struct {
	frames  chan *ppu.Frame
	dropped atomic.Uint64
}

// NewSink returns a new Sink buffering up to size frames.
func NewSink(size int) *Sink {
	return &Sink{frames: make(chan *ppu.Frame, size)}
}

// OnFrame implements ppu.Listener. frame is already a copy of the
// PPU's buffer, so the driver owns what it receives.
func (s *Sink) OnFrame(frame ppu.Frame) {
	select {
	case s.frames <- &frame:
	default:
		s.dropped.Add(1)
	}
}

// Frames returns the channel frames are delivered on.
func (s *Sink) Frames() <-chan *ppu.Frame {
	return s.frames
}

// Dropped returns the number of frames dropped because the driver
// was not keeping up.
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// Close closes the frames channel. OnFrame must not be called afterwards.
func (s *Sink) Close() {
	close(s.frames)
}

// Limit returns a ppu.Listener forwarding to l that calls stop once n
// frames have been delivered.
func Limit(l ppu.Listener, n uint64, stop func()) ppu.Listener {
	var count uint64
	return ppu.ListenerFunc(func(frame ppu.Frame) {
		l.OnFrame(frame)
		if count++; count == n {
			stop()
		}
	})
}

// Send reports a button change on ch, blocking until it is taken or
// done is closed. It reports whether the change was delivered.
func Send(done <-chan struct{}, ch chan<- joypad.Button, b joypad.Button) bool {
	select {
	case ch <- b:
		return true
	case <-done:
		return false
	}
}

// change is a button press or release waiting to be delivered.
type change struct {
	button  joypad.Button
	pressed bool
}

// Queue holds the button changes of a driver that cannot block while
// delivering them, such as one polling a window for events. Drivers
// select on Out alongside their other channels and call Sent once the
// send succeeded, so no change is ever dropped.
type Queue struct {
	pressed, released chan<- joypad.Button
	pending           []change
}

// NewQueue returns an empty Queue delivering to pressed and released.
func NewQueue(pressed, released chan<- joypad.Button) *Queue {
	return &Queue{pressed: pressed, released: released}
}

// Press queues a press of b.
func (q *Queue) Press(b joypad.Button) {
	q.pending = append(q.pending, change{button: b, pressed: true})
}

// Release queues a release of b.
func (q *Queue) Release(b joypad.Button) {
	q.pending = append(q.pending, change{button: b})
}

// Len returns the number of changes waiting.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Out returns the channel the oldest change is to be sent on, and its
// button. The channel is nil when nothing is waiting, so a select case
// sending on it never fires.
func (q *Queue) Out() (chan<- joypad.Button, joypad.Button) {
	if len(q.pending) == 0 {
		return nil, 0
	}
	next := q.pending[0]
	if next.pressed {
		return q.pressed, next.button
	}
	return q.released, next.button
}

// Sent removes the oldest change, after it has been sent on Out.
func (q *Queue) Sent() {
	if len(q.pending) > 0 {
		q.pending = q.pending[1:]
	}
}
