// Package store defines the snapshot store abstraction for catalog-watch.
// Business logic depends on the Store interface, never on a concrete
// implementation; the same monitor code runs against Postgres in production
// and the in-memory store in tests.
package store

import (
	"context"
	"errors"
	"sort"

	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// ErrSnapshotNotFound is returned when a (tenant, seq) pair does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store defines the append-only snapshot history for all tenants.
//
// Sequence numbers are per-tenant, start at 0, and increment by 1 per
// successful append. A single tenant's sequence is written by at most one
// monitor job at a time; the registry enforces that invariant.
type Store interface {
	// AppendSnapshot normalizes records (sort by ID, first occurrence per
	// ID wins), stamps the capture time, and writes the snapshot under the
	// next sequence number, which it returns. The write is atomic: a
	// failed append leaves no partial snapshot behind.
	AppendSnapshot(ctx context.Context, tenant string, records []domain.Record) (int, error)

	// GetSnapshot reads one snapshot. Returns ErrSnapshotNotFound when the
	// sequence was never written (or has been pruned).
	GetSnapshot(ctx context.Context, tenant string, seq int) (*domain.Snapshot, error)

	// ListSequences returns all stored sequence numbers for a tenant in
	// ascending numeric order. An unknown tenant yields an empty slice.
	ListSequences(ctx context.Context, tenant string) ([]int, error)

	// PruneSnapshots deletes all but the newest keepLast snapshots of every
	// tenant, returning the number of snapshots removed. Sequence numbers
	// of surviving snapshots are unchanged.
	PruneSnapshots(ctx context.Context, keepLast int) (int, error)

	// Migrate applies pending schema migrations, where applicable.
	Migrate(ctx context.Context) error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error
}

// Normalize returns a copy of records sorted ascending by ID with duplicate
// IDs removed. The sort is stable and keys on ID only, so "first occurrence
// wins" means whichever duplicate appeared earliest in the input order.
// Normalizing an already-normalized slice is a no-op (idempotent).
func Normalize(records []domain.Record) []domain.Record {
	sorted := make([]domain.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	out := sorted[:0]
	for i := range sorted {
		if i > 0 && sorted[i].ID == out[len(out)-1].ID {
			continue
		}
		out = append(out, sorted[i])
	}
	return out
}
