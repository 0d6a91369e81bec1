package store

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// MemoryStore implements Store with a process-local map. It is the backend
// for `storage.backend: memory` and the workhorse of the unit tests. All
// history is lost on process exit.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]domain.Snapshot // per tenant, ascending seq
	nowFunc   func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithNowFunc overrides the capture-time clock for tests.
func WithNowFunc(f func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		m.nowFunc = f
	}
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		snapshots: make(map[string][]domain.Snapshot),
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AppendSnapshot normalizes and stores records under the tenant's next
// sequence number.
func (m *MemoryStore) AppendSnapshot(
	_ context.Context,
	tenant string,
	records []domain.Record,
) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.snapshots[tenant]
	seq := 0
	if n := len(history); n > 0 {
		seq = history[n-1].Seq + 1
	}

	m.snapshots[tenant] = append(history, domain.Snapshot{
		Tenant:     tenant,
		Seq:        seq,
		Records:    Normalize(records),
		CapturedAt: m.nowFunc(),
	})
	return seq, nil
}

// GetSnapshot reads one snapshot by (tenant, seq).
func (m *MemoryStore) GetSnapshot(
	_ context.Context,
	tenant string,
	seq int,
) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.snapshots[tenant]
	i := sort.Search(len(history), func(i int) bool { return history[i].Seq >= seq })
	if i >= len(history) || history[i].Seq != seq {
		return nil, ErrSnapshotNotFound
	}

	// Copy so callers cannot mutate stored history.
	snap := history[i]
	snap.Records = append([]domain.Record(nil), snap.Records...)
	return &snap, nil
}

// ListSequences returns the tenant's stored sequence numbers, ascending.
func (m *MemoryStore) ListSequences(_ context.Context, tenant string) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.snapshots[tenant]
	seqs := make([]int, 0, len(history))
	for _, snap := range history {
		seqs = append(seqs, snap.Seq)
	}
	return seqs, nil
}

// PruneSnapshots drops all but the newest keepLast snapshots per tenant.
func (m *MemoryStore) PruneSnapshots(_ context.Context, keepLast int) (int, error) {
	if keepLast < 1 {
		keepLast = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for tenant, history := range m.snapshots {
		if extra := len(history) - keepLast; extra > 0 {
			m.snapshots[tenant] = append([]domain.Snapshot(nil), history[extra:]...)
			removed += extra
		}
	}
	return removed, nil
}

// Migrate is a no-op for the in-memory backend.
func (m *MemoryStore) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the in-memory backend.
func (m *MemoryStore) Ping(_ context.Context) error { return nil }
