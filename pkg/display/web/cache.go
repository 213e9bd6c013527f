package web

import "github.com/thelolagemann/gbcore/pkg/bits"

// cacheEntry is a frame that has been sent to the clients.
type cacheEntry struct {
	hash uint64
	data []byte
}

// cache is a ring of the most recent frames sent to the clients,
// identified by their hash. Clients keep the same ring, so a
// repeated frame is sent as its index.
type cache struct {
	cache   []cacheEntry
	idx     int
	enabled bool
	size    int
}

// maxCacheSize is the number of entries a one byte index can address.
const maxCacheSize = 256

func newCache(size int) *cache {
	size = bits.Clamp(0, size, maxCacheSize)
	return &cache{
		cache:   make([]cacheEntry, size),
		size:    size,
		enabled: size > 0,
	}
}

// index returns the position of hash in the ring, or -1.
func (c *cache) index(hash uint64) int {
	if !c.enabled {
		return -1
	}
	for i, e := range c.cache {
		if e.data != nil && e.hash == hash {
			return i
		}
	}

	return -1
}

// add stores a frame at the next position of the ring.
func (c *cache) add(hash uint64, output []byte) {
	if !c.enabled {
		return
	}
	c.cache[c.idx] = cacheEntry{hash: hash, data: output}
	c.idx = (c.idx + 1) % c.size
}

// entries calls fn with the position and data of every cached frame,
// oldest first.
func (c *cache) entries(fn func(pos int, data []byte)) {
	for i := 0; i < c.size; i++ {
		pos := (c.idx + i) % c.size
		if e := c.cache[pos]; e.data != nil {
			fn(pos, e.data)
		}
	}
}
