// Package registry owns the backend adapter lifecycle: construction
// from an explicit factory table, async initialization, authorization
// gating, enable/disable, hot reload by name, and disposal. Callers hold
// adapters by name; reload swaps the instance behind the same name key.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bridgefs/bridgefs/internal/infrastructure/logging"
	"github.com/bridgefs/bridgefs/internal/vfs"
)

// Factory constructs one adapter. The table of factories replaces
// runtime type scanning: what can be loaded is decided at compile time.
type Factory struct {
	Name string
	New  func(ctx context.Context) (vfs.Adapter, error)
}

// Registration is the administrative view of one loaded adapter.
type Registration struct {
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	Authorized bool   `json:"authorized"`
	ReadOnly   bool   `json:"read_only"`
}

type entry struct {
	factory Factory
	adapter vfs.Adapter
	enabled bool
}

// Manager is the lifecycle registry. A single RWMutex serializes
// load/reload/dispose against concurrent enumeration.
type Manager struct {
	mu        sync.RWMutex
	reloadMu  sync.Mutex
	factories []Factory
	entries   map[string]*entry
	order     []string
	logger    *logging.Logger
}

// NewManager creates a registry over an explicit factory table.
func NewManager(factories []Factory, logger *logging.Logger) *Manager {
	return &Manager{
		factories: factories,
		entries:   make(map[string]*entry),
		logger:    logger,
	}
}

// LoadAll constructs, initializes, and authorization-gates every
// factory. A failing candidate is logged and skipped, never aborting
// the rest. An unauthorized adapter is registered disabled so it stays
// visible to tooling and can be enabled later without a restart. Name
// collisions are last-registration-wins.
func (m *Manager) LoadAll(ctx context.Context) {
	for _, factory := range m.factories {
		adapter, enabled, err := m.construct(ctx, factory)
		if err != nil {
			m.logger.Warn("Backend failed to load",
				zap.String("backend", factory.Name),
				zap.Error(err),
			)
			continue
		}

		m.mu.Lock()
		if _, exists := m.entries[factory.Name]; !exists {
			m.order = append(m.order, factory.Name)
		}
		m.entries[factory.Name] = &entry{factory: factory, adapter: adapter, enabled: enabled}
		m.mu.Unlock()

		m.logger.Info("Backend loaded",
			zap.String("backend", factory.Name),
			zap.Bool("enabled", enabled),
		)
	}
}

// Get returns the adapter registered under an exact name.
func (m *Manager) Get(name string) (vfs.Adapter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	if !ok {
		return nil, false
	}
	return e.adapter, true
}

// All returns registrations in load order.
func (m *Manager) All() []Registration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	regs := make([]Registration, 0, len(m.order))
	for _, name := range m.order {
		e, ok := m.entries[name]
		if !ok {
			continue
		}
		info := e.adapter.Definition()
		regs = append(regs, Registration{
			Name:       name,
			Enabled:    e.enabled,
			Authorized: e.adapter.IsAuthorized(),
			ReadOnly:   info.ReadOnly,
		})
	}
	return regs
}

// Enabled returns the adapters that are both enabled and authorized, in
// load order. This is the dispatcher's target pool.
func (m *Manager) Enabled() []vfs.Adapter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var adapters []vfs.Adapter
	for _, name := range m.order {
		if e, ok := m.entries[name]; ok && e.enabled && e.adapter.IsAuthorized() {
			adapters = append(adapters, e.adapter)
		}
	}
	return adapters
}

// Enable marks a registration enabled. An unauthorized adapter cannot
// be enabled.
func (m *Manager) Enable(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	if !ok {
		return fmt.Errorf("backend %q: %w", name, vfs.ErrNotFound)
	}
	if !e.adapter.IsAuthorized() {
		return fmt.Errorf("backend %q: %w", name, vfs.ErrUnauthorized)
	}
	e.enabled = true
	return nil
}

// Disable marks a registration disabled without disposing it.
func (m *Manager) Disable(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	if !ok {
		return fmt.Errorf("backend %q: %w", name, vfs.ErrNotFound)
	}
	e.enabled = false
	return nil
}

// Reload disposes the named adapter and rebuilds it through its factory,
// preserving the name key. The name matches exactly first, then by
// case-insensitive substring, since a caller may not know the display
// name precisely. If authorization fails after the rebuild the
// registration stays, disabled. If construction itself fails the
// registration is removed and the error returned. reloadMu serializes
// overlapping reloads so one adapter instance is never disposed twice.
func (m *Manager) Reload(ctx context.Context, name string) error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	resolved, err := m.match(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	e, ok := m.entries[resolved]
	if !ok {
		// The entry can vanish between match and here, e.g. a
		// concurrent DisposeAll or a failed reload of the same name.
		m.mu.Unlock()
		return fmt.Errorf("backend %q: %w", resolved, vfs.ErrNotFound)
	}
	factory := e.factory
	old := e.adapter
	m.mu.Unlock()

	if err := old.Dispose(); err != nil {
		m.logger.Warn("Backend dispose failed during reload",
			zap.String("backend", resolved),
			zap.Error(err),
		)
	}

	adapter, enabled, err := m.construct(ctx, factory)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		delete(m.entries, resolved)
		m.order = remove(m.order, resolved)
		return fmt.Errorf("reload %q: %w", resolved, err)
	}
	m.entries[resolved] = &entry{factory: factory, adapter: adapter, enabled: enabled}

	m.logger.Info("Backend reloaded",
		zap.String("backend", resolved),
		zap.Bool("enabled", enabled),
	)
	return nil
}

// DisposeAll disposes every adapter and clears the registry.
func (m *Manager) DisposeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, e := range m.entries {
		if err := e.adapter.Dispose(); err != nil {
			m.logger.Warn("Backend dispose failed",
				zap.String("backend", name),
				zap.Error(err),
			)
		}
	}
	m.entries = make(map[string]*entry)
	m.order = nil
}

// Stats summarizes the registry for health reporting.
func (m *Manager) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	enabled := 0
	for _, e := range m.entries {
		if e.enabled {
			enabled++
		}
	}
	return map[string]interface{}{
		"total_backends":   len(m.entries),
		"enabled_backends": enabled,
	}
}

func (m *Manager) construct(ctx context.Context, factory Factory) (vfs.Adapter, bool, error) {
	adapter, err := factory.New(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("construct: %w", err)
	}
	if err := adapter.Initialize(ctx); err != nil {
		return nil, false, fmt.Errorf("initialize: %w", err)
	}
	return adapter, adapter.IsAuthorized(), nil
}

// match resolves a caller-supplied name to a registered key.
func (m *Manager) match(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.entries[name]; ok {
		return name, nil
	}
	lower := strings.ToLower(name)
	for _, registered := range m.order {
		if strings.Contains(strings.ToLower(registered), lower) {
			return registered, nil
		}
	}
	return "", fmt.Errorf("backend %q: %w", name, vfs.ErrNotFound)
}

func remove(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
