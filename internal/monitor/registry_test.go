package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-watch/internal/store"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

func newTestRegistry() (*Registry, *fakeNotifier) {
	st := store.NewMemoryStore()
	col := &fakeCollector{script: []collectResult{
		{records: []domain.Record{{ID: 1, Price: 100, Name: "a"}}},
	}}
	not := newFakeNotifier()
	reg := NewRegistry(st, col, not, WithRegistryLogger(discardLogger()))
	return reg, not
}

func TestRegistry_StartRejectsDuplicate(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	t.Cleanup(func() { _ = reg.StopAll(context.Background()) })

	require.NoError(t, reg.Start("tenant-1", "cat", time.Hour))
	err := reg.Start("tenant-1", "other", time.Hour)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	states := reg.Active()
	require.Len(t, states, 1)
	assert.Equal(t, "cat", states[0].Category, "original job untouched")
}

func TestRegistry_StartRejectsNonPositiveInterval(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	require.Error(t, reg.Start("tenant-1", "cat", 0))
	require.Error(t, reg.Start("tenant-1", "cat", -time.Minute))
	assert.Empty(t, reg.Active())
}

func TestRegistry_ConcurrentStartsYieldOneJob(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	t.Cleanup(func() { _ = reg.StopAll(context.Background()) })

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = reg.Start("tenant-1", "cat", time.Hour)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyRunning)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, reg.Active(), 1)
}

func TestRegistry_StopUnknownTenant(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	err := reg.Stop(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestRegistry_StopThenImmediateStart(t *testing.T) {
	t.Parallel()

	reg, not := newTestRegistry()
	t.Cleanup(func() { _ = reg.StopAll(context.Background()) })

	require.NoError(t, reg.Start("tenant-1", "cat", time.Hour))
	not.waitFor(t, "complete")

	require.NoError(t, reg.Stop(context.Background(), "tenant-1"))

	// Stop returned, so the slot must be free right away.
	require.NoError(t, reg.Start("tenant-1", "cat", time.Hour))
	assert.Len(t, reg.Active(), 1)
}

func TestRegistry_StopDeliversTerminalNotification(t *testing.T) {
	t.Parallel()

	reg, not := newTestRegistry()

	require.NoError(t, reg.Start("tenant-1", "cat", time.Hour))
	not.waitFor(t, "complete")
	require.NoError(t, reg.Stop(context.Background(), "tenant-1"))
	not.waitFor(t, "Monitoring stopped.")
}

func TestRegistry_ActiveSortedByTenant(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	t.Cleanup(func() { _ = reg.StopAll(context.Background()) })

	require.NoError(t, reg.Start("zeta", "cat-z", time.Hour))
	require.NoError(t, reg.Start("alpha", "cat-a", 30*time.Minute))
	require.NoError(t, reg.Start("mid", "cat-m", time.Hour))

	states := reg.Active()
	require.Len(t, states, 3)
	assert.Equal(t, "alpha", states[0].Tenant)
	assert.Equal(t, "mid", states[1].Tenant)
	assert.Equal(t, "zeta", states[2].Tenant)
	assert.Equal(t, 30*time.Minute, states[0].Interval)
	assert.False(t, states[0].StartedAt.IsZero())
}

func TestRegistry_StopAll(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()

	require.NoError(t, reg.Start("tenant-1", "cat", time.Hour))
	require.NoError(t, reg.Start("tenant-2", "cat", time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, reg.StopAll(ctx))
	assert.Empty(t, reg.Active())
}

func TestRegistry_StopHonorsContextDeadline(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	require.NoError(t, reg.Start("tenant-1", "cat", time.Hour))
	t.Cleanup(func() { _ = reg.StopAll(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := reg.Stop(ctx, "tenant-1")
	// Either the job already finished or the wait was cut short; both are
	// valid, but a cancelled context must never hang.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
