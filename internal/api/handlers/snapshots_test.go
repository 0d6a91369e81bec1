package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-watch/internal/api/handlers"
	"github.com/donaldgifford/catalog-watch/internal/store"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// mockSnapshotsProvider is a test double for SnapshotsProvider.
type mockSnapshotsProvider struct {
	seqs     []int
	snapshot *domain.Snapshot
	err      error
}

func (m *mockSnapshotsProvider) ListSequences(_ context.Context, _ string) ([]int, error) {
	return m.seqs, m.err
}

func (m *mockSnapshotsProvider) GetSnapshot(
	_ context.Context,
	_ string,
	_ int,
) (*domain.Snapshot, error) {
	return m.snapshot, m.err
}

func TestListSnapshots_Success(t *testing.T) {
	t.Parallel()

	h := handlers.NewSnapshotsHandler(&mockSnapshotsProvider{seqs: []int{0, 1, 4}})

	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, h)

	resp := api.Get("/api/v1/tenants/tenant-1/snapshots")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[0,1,4]", resp.Body.String())
}

func TestListSnapshots_Empty(t *testing.T) {
	t.Parallel()

	h := handlers.NewSnapshotsHandler(&mockSnapshotsProvider{seqs: nil})

	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, h)

	resp := api.Get("/api/v1/tenants/tenant-1/snapshots")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
}

func TestListSnapshots_Error(t *testing.T) {
	t.Parallel()

	h := handlers.NewSnapshotsHandler(&mockSnapshotsProvider{err: errors.New("db error")})

	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, h)

	resp := api.Get("/api/v1/tenants/tenant-1/snapshots")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "listing snapshots failed")
}

func TestGetSnapshot_Success(t *testing.T) {
	t.Parallel()

	h := handlers.NewSnapshotsHandler(&mockSnapshotsProvider{snapshot: &domain.Snapshot{
		Tenant: "tenant-1",
		Seq:    2,
		Records: []domain.Record{
			{ID: 1, Price: 100, Name: "a", Rating: "4.5"},
		},
		CapturedAt: time.Now(),
	}})

	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, h)

	resp := api.Get("/api/v1/tenants/tenant-1/snapshots/2")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"seq":2`)
	assert.Contains(t, resp.Body.String(), `"name":"a"`)
}

func TestGetSnapshot_NotFound(t *testing.T) {
	t.Parallel()

	h := handlers.NewSnapshotsHandler(&mockSnapshotsProvider{err: store.ErrSnapshotNotFound})

	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, h)

	resp := api.Get("/api/v1/tenants/tenant-1/snapshots/99")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "snapshot 99 not found")
}

func TestGetSnapshot_Error(t *testing.T) {
	t.Parallel()

	h := handlers.NewSnapshotsHandler(&mockSnapshotsProvider{err: errors.New("db error")})

	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, h)

	resp := api.Get("/api/v1/tenants/tenant-1/snapshots/0")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "reading snapshot failed")
}
