// Package cache implements the optional lazy byte-stream cache for
// not-yet-consumed Dataset/Member payloads. When Config.CacheCompression
// selects a codec, the orchestrator stores extracted member/dataset
// bytes here compressed, decompressing only when a caller actually reads
// them.
//
// The codecs live beside this file (zstd_pure.go, zstd_cgo.go, lz4.go):
// zstd is split by the !cgo/cgo build tags, and the pure-Go zstd and LZ4
// codecs reuse their encoders/decoders through sync.Pool. CacheCompressionNone (the default) bypasses the cache
// entirely, so enabling it is strictly opt-in.
package cache

import (
	"fmt"
	"sync"

	"github.com/go-zseries/mvsunload/config"
	"github.com/go-zseries/mvsunload/internal/hash"
)

// entry holds one cached byte stream, compressed with the Cache's codec.
type entry struct {
	compressed []byte
	size       int // decompressed size, for preallocation on read
}

// Cache stores Dataset/Member byte streams compressed, keyed by name.
// A Cache with a nil codec (CacheCompressionNone) is a no-op passthrough:
// Put stores the bytes uncompressed and Get returns them as given.
type Cache struct {
	mu      sync.RWMutex
	entries map[uint64]entry
	codec   byteCodec
}

// byteCodec is the minimal interface cache needs from either the pooled
// zstd or LZ4 compressor.
type byteCodec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, size int) ([]byte, error)
}

// New builds a Cache for the given compression selection. CacheCompressionNone
// returns a Cache that stores bytes uncompressed (no codec overhead, pure
// bookkeeping), matching Config's documented zero-cost default.
func New(sel config.CacheCompression) *Cache {
	c := &Cache{entries: make(map[uint64]entry)}
	switch sel {
	case config.CacheCompressionZstd:
		c.codec = newZstdCodec()
	case config.CacheCompressionLZ4:
		c.codec = newLZ4Codec()
	default:
		c.codec = nil
	}
	return c
}

// Put stores data under name, compressing it if a codec is configured.
func (c *Cache) Put(name string, data []byte) error {
	id := hash.NameID(name)
	if c.codec == nil {
		c.mu.Lock()
		c.entries[id] = entry{compressed: data, size: len(data)}
		c.mu.Unlock()
		return nil
	}
	compressed, err := c.codec.Compress(data)
	if err != nil {
		return fmt.Errorf("cache: compress %q: %w", name, err)
	}
	c.mu.Lock()
	c.entries[id] = entry{compressed: compressed, size: len(data)}
	c.mu.Unlock()
	return nil
}

// Get retrieves and, if necessary, decompresses the byte stream stored
// under name. The second return reports whether an entry existed.
func (c *Cache) Get(name string) ([]byte, bool, error) {
	id := hash.NameID(name)
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.codec == nil {
		return e.compressed, true, nil
	}
	data, err := c.codec.Decompress(e.compressed, e.size)
	if err != nil {
		return nil, true, fmt.Errorf("cache: decompress %q: %w", name, err)
	}
	return data, true, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
