// Package cache memoizes expensive remote fetches and conversions in two
// tiers: a bounded in-memory map with FIFO eviction, backed by an
// unbounded on-disk store of gzip-compressed entries.
//
// Keys are derived from a stable identity string (a logical file name or
// request fingerprint), not from content bytes. A hit therefore does not
// imply the content is unchanged; invalidation is call-explicit via Clear.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// DefaultMemoryCapacity bounds the memory tier. Eviction is FIFO on
// insertion order, independent of entry size.
const DefaultMemoryCapacity = 10

const fileExt = ".cache"

// Cache is a two-tier content cache. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	order    []string
	capacity int
	dir      string
}

// New creates a cache persisting its disk tier under dir. Two instances
// pointed at the same dir share the disk tier.
func New(dir string, capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{
		entries:  make(map[string][]byte),
		capacity: capacity,
		dir:      dir,
	}, nil
}

// Key hashes an identity string to the fixed-length cache key. Hashing
// keeps case and separator variation from splitting entries for the same
// logical object, and yields a deterministic on-disk filename.
func Key(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:])
}

// Get looks up an identity string: memory first, then disk (promoting a
// disk hit into memory). The second return is false on a miss.
func (c *Cache) Get(identity string) ([]byte, bool) {
	key := Key(identity)

	c.mu.Lock()
	if data, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return data, true
	}
	c.mu.Unlock()

	data, err := c.readDisk(key)
	if err != nil {
		return nil, false
	}

	c.mu.Lock()
	c.insert(key, data)
	c.mu.Unlock()
	return data, true
}

// Put stores data under an identity string in both tiers.
func (c *Cache) Put(identity string, data []byte) error {
	key := Key(identity)

	if err := c.writeDisk(key, data); err != nil {
		return err
	}

	c.mu.Lock()
	c.insert(key, data)
	c.mu.Unlock()
	return nil
}

// Clear empties the memory tier and removes every disk entry.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.order = nil
	c.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(c.dir, "*"+fileExt))
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}
	return nil
}

// Len returns the number of entries in the memory tier.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// insert adds to the memory tier, evicting the oldest insertion when
// past capacity. Caller holds the lock.
func (c *Cache) insert(key string, data []byte) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = data
		return
	}
	for len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = data
	c.order = append(c.order, key)
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

func (c *Cache) writeDisk(key string, data []byte) error {
	f, err := os.Create(c.path(key))
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("compress cache entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Cache) readDisk(key string) ([]byte, error) {
	f, err := os.Open(c.path(key))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}
