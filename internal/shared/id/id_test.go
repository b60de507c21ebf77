package id

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequestID(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()

	assert.NotEqual(t, a, b)
	assert.True(t, IsRequestID(a.String()))
	assert.True(t, IsRequestID(b.String()))
}

func TestIsRequestID(t *testing.T) {
	assert.False(t, IsRequestID(""))
	assert.False(t, IsRequestID("req_"))
	assert.False(t, IsRequestID("req_not-a-ulid"))
	assert.False(t, IsRequestID("sess_01HZXV5T3B8Q4R9W2Y7N6M5K4J"))
}

func TestGenerateConcurrent(t *testing.T) {
	gen := Default()
	seen := sync.Map{}
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.Generate().String()
			_, dup := seen.LoadOrStore(id, true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}
