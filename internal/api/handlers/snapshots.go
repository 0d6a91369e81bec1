package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/catalog-watch/internal/store"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// SnapshotsProvider defines the store methods required by the snapshots
// handler.
type SnapshotsProvider interface {
	ListSequences(ctx context.Context, tenant string) ([]int, error)
	GetSnapshot(ctx context.Context, tenant string, seq int) (*domain.Snapshot, error)
}

// SnapshotsHandler handles snapshot inspection requests.
type SnapshotsHandler struct {
	store SnapshotsProvider
}

// NewSnapshotsHandler creates a new SnapshotsHandler.
func NewSnapshotsHandler(s SnapshotsProvider) *SnapshotsHandler {
	return &SnapshotsHandler{store: s}
}

// ListSnapshotsInput is the request path for listing a tenant's snapshots.
type ListSnapshotsInput struct {
	Tenant string `path:"tenant" doc:"Tenant identifier"`
}

// ListSnapshotsOutput is the response body for listing snapshot sequences.
type ListSnapshotsOutput struct {
	Body []int
}

// GetSnapshotInput is the request path for reading one snapshot.
type GetSnapshotInput struct {
	Tenant string `path:"tenant" doc:"Tenant identifier"`
	Seq    int    `path:"seq" minimum:"0" doc:"Snapshot sequence number"`
}

// GetSnapshotOutput is the response body for one snapshot.
type GetSnapshotOutput struct {
	Body domain.Snapshot
}

// ListSnapshots returns the tenant's retained snapshot sequence numbers in
// ascending order.
func (h *SnapshotsHandler) ListSnapshots(
	ctx context.Context,
	input *ListSnapshotsInput,
) (*ListSnapshotsOutput, error) {
	seqs, err := h.store.ListSequences(ctx, input.Tenant)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing snapshots failed: " + err.Error())
	}

	if seqs == nil {
		seqs = []int{}
	}
	return &ListSnapshotsOutput{Body: seqs}, nil
}

// GetSnapshot returns one stored snapshot by sequence number.
func (h *SnapshotsHandler) GetSnapshot(
	ctx context.Context,
	input *GetSnapshotInput,
) (*GetSnapshotOutput, error) {
	snap, err := h.store.GetSnapshot(ctx, input.Tenant, input.Seq)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return nil, huma.Error404NotFound(fmt.Sprintf(
			"snapshot %d not found for tenant %s", input.Seq, input.Tenant,
		))
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("reading snapshot failed: " + err.Error())
	}

	return &GetSnapshotOutput{Body: *snap}, nil
}

// RegisterSnapshotRoutes registers snapshot inspection endpoints with the
// Huma API.
func RegisterSnapshotRoutes(api huma.API, h *SnapshotsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-snapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenant}/snapshots",
		Summary:     "List snapshot sequences",
		Description: "Returns the tenant's retained snapshot sequence numbers in ascending order.",
		Tags:        []string{"snapshots"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListSnapshots)

	huma.Register(api, huma.Operation{
		OperationID: "get-snapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenant}/snapshots/{seq}",
		Summary:     "Get a snapshot",
		Description: "Returns one stored snapshot by sequence number.",
		Tags:        []string{"snapshots"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, h.GetSnapshot)
}
