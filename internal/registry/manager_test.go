package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgefs/bridgefs/internal/infrastructure/logging"
	"github.com/bridgefs/bridgefs/internal/vfs"
)

// fakeAdapter tracks lifecycle calls for registry tests.
type fakeAdapter struct {
	vfs.Adapter
	name         string
	authorized   bool
	initErr      error
	initCalls    int
	disposed     bool
	disposeCalls int
	generation   int
}

func (f *fakeAdapter) Definition() vfs.Info { return vfs.Info{Name: f.name} }
func (f *fakeAdapter) IsAuthorized() bool   { return f.authorized }

func (f *fakeAdapter) Initialize(ctx context.Context) error {
	f.initCalls++
	return f.initErr
}

func (f *fakeAdapter) Dispose() error {
	f.disposed = true
	f.disposeCalls++
	return nil
}

func factoryFor(name string, authorized bool, constructed *[]*fakeAdapter) Factory {
	return Factory{
		Name: name,
		New: func(ctx context.Context) (vfs.Adapter, error) {
			a := &fakeAdapter{name: name, authorized: authorized, generation: len(*constructed)}
			*constructed = append(*constructed, a)
			return a, nil
		},
	}
}

func newTestManager(factories []Factory) *Manager {
	return NewManager(factories, logging.NewNop())
}

func TestLoadAllGatesOnAuthorization(t *testing.T) {
	var built []*fakeAdapter
	m := newTestManager([]Factory{
		factoryFor("Alpha", true, &built),
		factoryFor("Beta", false, &built),
	})
	m.LoadAll(context.Background())

	regs := m.All()
	require.Len(t, regs, 2)
	assert.True(t, regs[0].Enabled)
	assert.False(t, regs[1].Enabled, "unauthorized backend registers disabled")

	// Disabled-but-registered is still retrievable by name.
	_, ok := m.Get("Beta")
	assert.True(t, ok)

	assert.Len(t, m.Enabled(), 1)
}

func TestLoadAllContinuesPastFailure(t *testing.T) {
	var built []*fakeAdapter
	m := newTestManager([]Factory{
		{Name: "Broken", New: func(ctx context.Context) (vfs.Adapter, error) {
			return nil, errors.New("no constructor deps")
		}},
		factoryFor("Alpha", true, &built),
	})
	m.LoadAll(context.Background())

	_, ok := m.Get("Broken")
	assert.False(t, ok)
	_, ok = m.Get("Alpha")
	assert.True(t, ok)
}

func TestLoadAllInitFailureSkips(t *testing.T) {
	m := newTestManager([]Factory{
		{Name: "BadInit", New: func(ctx context.Context) (vfs.Adapter, error) {
			return &fakeAdapter{name: "BadInit", authorized: true, initErr: errors.New("boom")}, nil
		}},
	})
	m.LoadAll(context.Background())

	_, ok := m.Get("BadInit")
	assert.False(t, ok)
}

func TestEnableDisable(t *testing.T) {
	var built []*fakeAdapter
	m := newTestManager([]Factory{factoryFor("Alpha", true, &built)})
	m.LoadAll(context.Background())

	require.NoError(t, m.Disable("Alpha"))
	assert.Empty(t, m.Enabled())

	require.NoError(t, m.Enable("Alpha"))
	assert.Len(t, m.Enabled(), 1)

	assert.Error(t, m.Enable("Nope"))
	assert.Error(t, m.Disable("Nope"))
}

func TestEnableRefusesUnauthorized(t *testing.T) {
	var built []*fakeAdapter
	m := newTestManager([]Factory{factoryFor("Beta", false, &built)})
	m.LoadAll(context.Background())

	assert.ErrorIs(t, m.Enable("Beta"), vfs.ErrUnauthorized)
}

func TestReloadReplacesInstanceKeepingName(t *testing.T) {
	var built []*fakeAdapter
	m := newTestManager([]Factory{factoryFor("Alpha", true, &built)})
	m.LoadAll(context.Background())
	require.Len(t, built, 1)

	require.NoError(t, m.Reload(context.Background(), "Alpha"))

	assert.True(t, built[0].disposed, "old instance disposed")
	require.Len(t, built, 2)

	current, ok := m.Get("Alpha")
	require.True(t, ok)
	assert.Same(t, vfs.Adapter(built[1]), current)
}

func TestReloadFuzzyMatch(t *testing.T) {
	var built []*fakeAdapter
	m := newTestManager([]Factory{factoryFor("Mail Archive", true, &built)})
	m.LoadAll(context.Background())

	require.NoError(t, m.Reload(context.Background(), "archive"))
	_, ok := m.Get("Mail Archive")
	assert.True(t, ok)

	assert.Error(t, m.Reload(context.Background(), "unknown"))
}

// lockedFactory builds fake adapters with a mutex around the shared
// slice so concurrent reloads can record every instance safely.
func lockedFactory(name string, mu *sync.Mutex, built *[]*fakeAdapter) Factory {
	return Factory{
		Name: name,
		New: func(ctx context.Context) (vfs.Adapter, error) {
			a := &fakeAdapter{name: name, authorized: true}
			mu.Lock()
			*built = append(*built, a)
			mu.Unlock()
			return a, nil
		},
	}
}

func TestReloadRacingDisposeAll(t *testing.T) {
	var mu sync.Mutex
	var built []*fakeAdapter
	f := lockedFactory("Alpha", &mu, &built)

	for i := 0; i < 50; i++ {
		m := newTestManager([]Factory{f})
		m.LoadAll(context.Background())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			// If DisposeAll wins the race the registration is gone
			// and the reload reports not-found instead of panicking.
			if err := m.Reload(context.Background(), "Alpha"); err != nil {
				assert.ErrorIs(t, err, vfs.ErrNotFound)
			}
		}()
		go func() {
			defer wg.Done()
			m.DisposeAll()
		}()
		wg.Wait()
	}
}

func TestConcurrentReloadsDisposeEachInstanceOnce(t *testing.T) {
	var mu sync.Mutex
	var built []*fakeAdapter
	m := newTestManager([]Factory{lockedFactory("Alpha", &mu, &built)})
	m.LoadAll(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Reload(context.Background(), "Alpha"))
		}()
	}
	wg.Wait()

	require.Len(t, built, 9)
	live, ok := m.Get("Alpha")
	require.True(t, ok)
	for _, a := range built {
		if vfs.Adapter(a) == live {
			assert.Equal(t, 0, a.disposeCalls, "live instance never disposed")
			continue
		}
		assert.Equal(t, 1, a.disposeCalls, "replaced instance disposed exactly once")
	}
}

func TestDisposeAll(t *testing.T) {
	var built []*fakeAdapter
	m := newTestManager([]Factory{
		factoryFor("Alpha", true, &built),
		factoryFor("Beta", true, &built),
	})
	m.LoadAll(context.Background())

	m.DisposeAll()

	for _, a := range built {
		assert.True(t, a.disposed)
	}
	assert.Empty(t, m.All())
}

func TestLastRegistrationWins(t *testing.T) {
	var first, second []*fakeAdapter
	m := newTestManager([]Factory{
		factoryFor("Dup", false, &first),
		factoryFor("Dup", true, &second),
	})
	m.LoadAll(context.Background())

	regs := m.All()
	require.Len(t, regs, 1)
	assert.True(t, regs[0].Enabled, "second registration replaced the first")
}
