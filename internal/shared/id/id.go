// Package id generates ULID correlation identifiers.
//
// Request IDs are ULIDs so log lines sort by arrival time without a
// separate timestamp. Conversation identity stays with UUIDs in the
// conversation package; this package only covers correlation IDs that
// benefit from being k-sortable.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies one HTTP request through logs and responses.
type RequestID string

// String returns the raw identifier.
func (id RequestID) String() string { return string(id) }

const requestPrefix = "req_"

// Generator generates ULIDs from a guarded entropy source.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator over an entropy source. Tests pass a
// deterministic reader.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// NewRequestID generates a prefixed request correlation ID.
func NewRequestID() RequestID {
	return RequestID(requestPrefix + Default().Generate().String())
}

// IsRequestID reports whether s carries the request prefix and a valid
// ULID body.
func IsRequestID(s string) bool {
	if len(s) <= len(requestPrefix) || s[:len(requestPrefix)] != requestPrefix {
		return false
	}
	_, err := ulid.Parse(s[len(requestPrefix):])
	return err == nil
}
