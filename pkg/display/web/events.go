package web

// Type is the first byte of every message sent to a client.
type Type = uint8

const (
	// Frame carries a complete frame as packed RGB, brotli compressed
	// when compression is enabled.
	Frame Type = iota
	// FrameCache repeats the cached frame at the index that follows.
	FrameCache
	// ClientInfo carries the hub settings byte followed by the
	// compression level, sent once when a client connects.
	ClientInfo
	// ServerInfo carries the id and average latency (little endian
	// milliseconds) of every connected client.
	ServerInfo
	// FrameCacheSync fills the cache of a newly connected client. It
	// carries the position the next frame will be cached at, the
	// position of this entry and the entry itself, encoded as a Frame.
	// It is not drawn.
	FrameCacheSync
)

// Event is the first byte of messages sent by a client that are not
// button changes.
type Event = uint8

const (
	// KeepAlive is ignored.
	KeepAlive Event = 254
	// Closing asks the hub to disconnect the client.
	Closing Event = 255
)

// Button changes are sent by clients as two bytes, the joypad.Button
// followed by its state.
const (
	Released uint8 = iota
	Pressed
)
