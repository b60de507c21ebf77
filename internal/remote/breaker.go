package remote

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker is rejecting requests
// after repeated failures.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerState represents the circuit breaker state.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

// String returns the string representation of the state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerHalfOpen:
		return "half-open"
	case BreakerOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Breaker guards a remote endpoint. After tripThreshold consecutive
// failures it rejects requests for cooldown, then admits one probe;
// the probe's outcome decides between closing and reopening.
type Breaker struct {
	tripThreshold uint32
	cooldown      time.Duration

	mu            sync.Mutex
	state         BreakerState
	failures      uint32
	retryAt       time.Time
	probeInFlight bool
}

// NewBreaker creates a breaker. Zero values get sensible defaults: five
// consecutive failures trip it, and it cools down for thirty seconds.
func NewBreaker(tripThreshold uint32, cooldown time.Duration) *Breaker {
	if tripThreshold == 0 {
		tripThreshold = 5
	}
	if cooldown == 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		tripThreshold: tripThreshold,
		cooldown:      cooldown,
		state:         BreakerClosed,
	}
}

// State returns the current state, advancing open to half-open when the
// cooldown has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current(time.Now())
}

// Execute runs fn if the breaker admits it and records the outcome.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current(time.Now()) {
	case BreakerOpen:
		return ErrCircuitOpen
	case BreakerHalfOpen:
		if b.probeInFlight {
			return ErrCircuitOpen
		}
		b.probeInFlight = true
	}
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state := b.current(now)

	if success {
		b.state = BreakerClosed
		b.failures = 0
		b.probeInFlight = false
		return
	}

	switch state {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.tripThreshold {
			b.trip(now)
		}
	case BreakerHalfOpen:
		b.trip(now)
	}
}

func (b *Breaker) trip(now time.Time) {
	b.state = BreakerOpen
	b.retryAt = now.Add(b.cooldown)
	b.probeInFlight = false
}

// current advances open to half-open once the cooldown has elapsed.
// Callers hold b.mu.
func (b *Breaker) current(now time.Time) BreakerState {
	if b.state == BreakerOpen && now.After(b.retryAt) {
		b.state = BreakerHalfOpen
		b.probeInFlight = false
	}
	return b.state
}
