package web

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/pkg/display"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Client is a websocket connection watching the frames.
type Client struct {
	hub  *hub
	conn *websocket.Conn
	Send chan []byte
	ID   uint8

	// average round trip time in milliseconds, where available
	avgLatency atomic.Uint32
}

// leave unregisters the client, unless the hub is gone.
func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// ReadPump forwards the button changes sent by the client until the
// connection is closed.
func (c *Client) ReadPump() {
	defer func() {
		c.leave()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return // connection closed
		}
		if len(message) == 0 {
			continue
		}

		switch message[0] {
		case Closing:
			return
		case KeepAlive:
			continue
		}
		if len(message) != 2 || message[0] > joypad.ButtonDown {
			c.hub.log.Debugf("web: client %d sent malformed message %v", c.ID, message)
			continue
		}

		ch := c.hub.pressed
		if message[1] == Released {
			ch = c.hub.released
		}
		if !display.Send(c.hub.done, ch, message[0]) {
			return
		}
	}
}

// WritePump writes the messages queued on Send to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.leave()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			// hub closed the channel
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// try to write message to client
			if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

			c.updateLatency()
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// updateLatency folds the current round trip time of the underlying
// TCP connection into the average.
func (c *Client) updateLatency() {
	tcp, ok := c.conn.UnderlyingConn().(*net.TCPConn)
	if !ok {
		return
	}
	rtt, err := roundTrip(tcp)
	if err != nil {
		return
	}
	avg := c.avgLatency.Load()
	c.avgLatency.Store((avg*9 + uint32(rtt.Milliseconds())) / 10)
}
