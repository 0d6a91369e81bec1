//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/catalog-watch/internal/store"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("catalog_watch_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testRecords() []domain.Record {
	return []domain.Record{
		{ID: 200, Price: 2500, Name: "kettle", Rating: "4.8"},
		{ID: 100, Price: 1200, Name: "mug", Rating: "4.5"},
		{ID: 200, Price: 2400, Name: "kettle-dup", Rating: "4.8"},
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_AppendAndGet(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	seq, err := s.AppendSnapshot(ctx, "tenant-1", testRecords())
	require.NoError(t, err)
	assert.Equal(t, 0, seq)

	snap, err := s.GetSnapshot(ctx, "tenant-1", 0)
	require.NoError(t, err)
	require.Len(t, snap.Records, 2)
	assert.Equal(t, int64(100), snap.Records[0].ID)
	assert.Equal(t, int64(200), snap.Records[1].ID)
	// First occurrence of the duplicate ID wins.
	assert.Equal(t, "kettle", snap.Records[1].Name)
	assert.Equal(t, int64(2500), snap.Records[1].Price)
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestPostgresStore_SequencesArePerTenant(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	for want := range 3 {
		seq, err := s.AppendSnapshot(ctx, "a", testRecords())
		require.NoError(t, err)
		assert.Equal(t, want, seq)
	}

	seq, err := s.AppendSnapshot(ctx, "b", testRecords())
	require.NoError(t, err)
	assert.Equal(t, 0, seq)

	seqs, err := s.ListSequences(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, seqs)
}

func TestPostgresStore_GetSnapshot_NotFound(t *testing.T) {
	s := setupPostgres(t)

	_, err := s.GetSnapshot(context.Background(), "nobody", 0)
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
}

func TestPostgresStore_PruneSnapshots(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	for range 5 {
		_, err := s.AppendSnapshot(ctx, "a", testRecords())
		require.NoError(t, err)
	}

	removed, err := s.PruneSnapshots(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	seqs, err := s.ListSequences(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, seqs)

	// Appends after pruning keep counting from the surviving maximum.
	seq, err := s.AppendSnapshot(ctx, "a", testRecords())
	require.NoError(t, err)
	assert.Equal(t, 5, seq)
}

func TestPostgresStore_EmptySnapshot(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	seq, err := s.AppendSnapshot(ctx, "empty", nil)
	require.NoError(t, err)

	snap, err := s.GetSnapshot(ctx, "empty", seq)
	require.NoError(t, err)
	assert.Empty(t, snap.Records)
}
