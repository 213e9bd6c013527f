package web

import (
	"bytes"
	"context"
	"encoding/binary"
	"net/http"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gorilla/websocket"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// hub relays frames to every connected client, and button changes
// from the clients to the emulator.
type hub struct {
	clients map[*Client]bool

	frames               chan *ppu.Frame
	register, unregister chan *Client
	done                 chan struct{}

	pressed, released chan<- joypad.Button

	compression      bool
	compressionLevel int
	cache            *cache
	currentID        uint8

	log log.Logger
	mu  sync.Mutex
}

func newHub(opts Options, pressed, released chan<- joypad.Button, logger log.Logger) *hub {
	return &hub{
		clients:          make(map[*Client]bool),
		frames:           make(chan *ppu.Frame, 8),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		done:             make(chan struct{}),
		pressed:          pressed,
		released:         released,
		compression:      opts.Compression,
		compressionLevel: opts.CompressionLevel,
		cache:            newCache(opts.CacheSize),
		log:              logger,
	}
}

// ServeHTTP upgrades the connection and registers the new client.
func (w *hub) ServeHTTP(wr http.ResponseWriter, r *http.Request) {
	wr.Header().Set("Access-Control-Allow-Origin", "*")

	// upgrade the connection to a websocket connection
	conn, err := upgrader.Upgrade(wr, r, nil)
	if err != nil {
		w.log.Errorf("web: upgrading %s: %v", r.RemoteAddr, err)
		return
	}

	c := w.newClient(conn)
	// send initial data information
	c.Send <- []byte{ClientInfo, w.info(), uint8(w.compressionLevel)}

	select {
	case w.register <- c:
	case <-w.done:
		conn.Close()
		return
	}
	w.log.Debugf("web: client %d connected from %s", c.ID, r.RemoteAddr)

	// spawn read/write pumps
	go c.ReadPump()
	go c.WritePump()
}

// run encodes and delivers the frames until ctx is done. The cache is
// only touched here, so a client registering sees it in the same state
// as the frames that follow.
func (w *hub) run(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer func() {
		t.Stop()
		for c := range w.clients {
			close(c.Send)
			delete(w.clients, c)
		}
		close(w.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-w.register:
			w.clients[c] = true
			w.sync(c)
		case c := <-w.unregister:
			// is this client still registered
			if _, ok := w.clients[c]; ok {
				delete(w.clients, c)
				close(c.Send)
				w.log.Debugf("web: client %d disconnected", c.ID)
			}
		case frame := <-w.frames:
			msg, err := w.encode(frame)
			if err != nil {
				w.log.Errorf("web: encoding frame: %v", err)
				continue
			}
			w.send(msg)
		case <-t.C:
			w.send(w.serverInfo())
		}
	}
}

// sync sends the cached frames to a client that has just registered,
// so the cache indexes that follow refer to frames it holds.
func (w *hub) sync(c *Client) {
	next := uint8(w.cache.idx)
	w.cache.entries(func(pos int, data []byte) {
		if _, ok := w.clients[c]; !ok {
			return
		}
		msg := append([]byte{FrameCacheSync, next, uint8(pos)}, data[1:]...)
		select {
		case c.Send <- msg:
		default:
			close(c.Send)
			delete(w.clients, c)
		}
	})
}

// send queues msg for every client, dropping the clients that are not
// keeping up.
func (w *hub) send(msg []byte) {
	for c := range w.clients {
		select {
		case c.Send <- msg:
		default:
			close(c.Send)
			delete(w.clients, c)
		}
	}
}

// serverInfo builds the id and latency of every client.
func (w *hub) serverInfo() []byte {
	data := []byte{ServerInfo}
	for c := range w.clients {
		data = append(data, c.ID)
		data = binary.LittleEndian.AppendUint16(data, uint16(c.avgLatency.Load()))
	}
	return data
}

// encode turns a frame into a message, sending a cache index instead
// of frames that have been sent recently.
func (w *hub) encode(frame *ppu.Frame) ([]byte, error) {
	hash := frame.Hash()
	if i := w.cache.index(hash); i >= 0 {
		return []byte{FrameCache, uint8(i)}, nil
	}

	buf := bytes.NewBuffer([]byte{Frame})
	if w.compression {
		bw := brotli.NewWriterLevel(buf, w.compressionLevel)
		if _, err := bw.Write(frame.Bytes()); err != nil {
			return nil, err
		}
		if err := bw.Close(); err != nil {
			return nil, err
		}
	} else {
		buf.Write(frame.Bytes())
	}

	w.cache.add(hash, buf.Bytes())
	return buf.Bytes(), nil
}

// info returns a byte of information containing the various
// hub settings. The byte is constructed as follows:
//
//	Bit 0: Compression enabled
//	Bit 1: Frame caching enabled
func (w *hub) info() byte {
	info := uint8(0)
	if w.compression {
		info |= types.Bit0
	}
	if w.cache.enabled {
		info |= types.Bit1
	}

	return info
}

// newClient creates a new client with the next id.
func (w *hub) newClient(conn *websocket.Conn) *Client {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.currentID++

	return &Client{
		hub:  w,
		conn: conn,
		Send: make(chan []byte, 256),
		ID:   w.currentID,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 16,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
