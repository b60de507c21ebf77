// Package dispatch fans one logical chat request out to multiple
// backends. Targets run concurrently and fail independently: one
// backend's error never blocks or suppresses another's reply. Retry is
// an explicit operator decision, never automatic.
package dispatch

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bridgefs/bridgefs/internal/infrastructure/logging"
	"github.com/bridgefs/bridgefs/internal/vfs"
)

// Target is the slice of the adapter surface the dispatcher needs. Chat
// backends implement it; each records outcomes against its own
// conversation state.
type Target interface {
	Definition() vfs.Info
	IsAuthorized() bool
	SendMessage(ctx context.Context, payload string) (string, error)
}

// Result is the tagged outcome for one target. Reply is valid only when
// Err is nil; a failure is data here, not a thrown error, so a broadcast
// can record partial failure without losing the other targets' results.
type Result struct {
	Target string
	Reply  string
	Err    error
}

// Ok reports whether the target's remote call succeeded.
func (r Result) Ok() bool { return r.Err == nil }

// Source yields the current pool of enabled, authorized targets. The
// registry stays the owner; the dispatcher asks fresh on every send so
// reloads take effect immediately.
type Source func() []Target

// Dispatcher resolves targeting and executes fan-out sends. It retains
// the last payload and target set for explicit retry.
type Dispatcher struct {
	source Source
	logger *logging.Logger

	mu          sync.Mutex
	lastPayload string
	lastTargets []string
}

// New creates a dispatcher over a target source.
func New(source Source, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{source: source, logger: logger}
}

// ParseTarget splits an explicit "<adapter-name>: <payload>" prefix off
// an input string. The prefix only counts when it names an enabled,
// authorized adapter case-insensitively; otherwise the whole input,
// colon included, is the payload.
func (d *Dispatcher) ParseTarget(input string) (target, payload string, explicit bool) {
	idx := strings.Index(input, ":")
	if idx <= 0 {
		return "", input, false
	}
	name := strings.TrimSpace(input[:idx])
	for _, t := range d.source() {
		if strings.EqualFold(t.Definition().Name, name) {
			return t.Definition().Name, strings.TrimSpace(input[idx+1:]), true
		}
	}
	return "", input, false
}

// Send resolves targets for input and executes against each
// concurrently. With an explicit prefix the single named adapter is
// used; otherwise defaults selects by name from the enabled pool, and
// an empty defaults set broadcasts to the whole pool. Results arrive in
// target order once every send has finished.
func (d *Dispatcher) Send(ctx context.Context, input string, defaults []string) []Result {
	target, payload, explicit := d.ParseTarget(input)

	var names []string
	if explicit {
		names = []string{target}
	} else if len(defaults) > 0 {
		names = defaults
	} else {
		for _, t := range d.source() {
			names = append(names, t.Definition().Name)
		}
	}

	d.mu.Lock()
	d.lastPayload = payload
	d.lastTargets = append([]string(nil), names...)
	d.mu.Unlock()

	return d.execute(ctx, payload, names)
}

// Retry resends the last payload to the same target set.
func (d *Dispatcher) Retry(ctx context.Context) []Result {
	d.mu.Lock()
	payload := d.lastPayload
	names := append([]string(nil), d.lastTargets...)
	d.mu.Unlock()
	return d.execute(ctx, payload, names)
}

// RetryWith resends the last payload with one specific alternate
// substituted for the failed target. The substitution persists for
// subsequent retries.
func (d *Dispatcher) RetryWith(ctx context.Context, failed, alternate string) []Result {
	d.mu.Lock()
	payload := d.lastPayload
	names := make([]string, len(d.lastTargets))
	for i, n := range d.lastTargets {
		if strings.EqualFold(n, failed) {
			names[i] = alternate
		} else {
			names[i] = n
		}
	}
	d.lastTargets = append([]string(nil), names...)
	d.mu.Unlock()
	return d.execute(ctx, payload, names)
}

// execute runs the remote call against every named target concurrently.
// Once issued, a call runs to completion or failure; there is no
// cross-target cancellation.
func (d *Dispatcher) execute(ctx context.Context, payload string, names []string) []Result {
	results := make([]Result, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		target, ok := d.lookup(name)
		if !ok {
			results[i] = Result{Target: name, Err: vfs.ErrUnauthorized}
			continue
		}

		wg.Add(1)
		go func(i int, target Target) {
			defer wg.Done()
			reply, err := target.SendMessage(ctx, payload)
			results[i] = Result{Target: target.Definition().Name, Reply: reply, Err: err}
			if err != nil {
				d.logger.Warn("Dispatch target failed",
					zap.String("target", target.Definition().Name),
					zap.Error(err),
				)
			}
		}(i, target)
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) lookup(name string) (Target, bool) {
	for _, t := range d.source() {
		if strings.EqualFold(t.Definition().Name, name) {
			return t, true
		}
	}
	return nil, false
}
