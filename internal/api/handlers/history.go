package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/catalog-watch/internal/monitor"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// HistoryProvider defines the query required by the history handler.
type HistoryProvider interface {
	History(ctx context.Context, tenant string, itemID int64) ([]domain.PricePoint, error)
}

// HistoryHandler handles price trail requests.
type HistoryHandler struct {
	provider HistoryProvider
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(p HistoryProvider) *HistoryHandler {
	return &HistoryHandler{provider: p}
}

// GetHistoryInput is the request path for an item's price trail.
type GetHistoryInput struct {
	Tenant string `path:"tenant" doc:"Tenant identifier"`
	ItemID int64  `path:"item_id" doc:"Catalog item ID"`
}

// GetHistoryOutput is the response body for an item's price trail.
type GetHistoryOutput struct {
	Body []domain.PricePoint
}

// GetHistory returns the item's price trail across the tenant's retained
// snapshots, oldest first.
func (h *HistoryHandler) GetHistory(
	ctx context.Context,
	input *GetHistoryInput,
) (*GetHistoryOutput, error) {
	trail, err := h.provider.History(ctx, input.Tenant, input.ItemID)
	if errors.Is(err, monitor.ErrNoHistory) {
		return nil, huma.Error404NotFound("no snapshots recorded for tenant " + input.Tenant)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("fetching price history failed: " + err.Error())
	}

	if trail == nil {
		trail = []domain.PricePoint{}
	}
	return &GetHistoryOutput{Body: trail}, nil
}

// RegisterHistoryRoutes registers price history endpoints with the Huma API.
func RegisterHistoryRoutes(api huma.API, h *HistoryHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-price-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenant}/history/{item_id}",
		Summary:     "Get an item's price history",
		Description: "Returns the item's price trail across retained snapshots, oldest first. " +
			"Consecutive snapshots with an unchanged price collapse into one point.",
		Tags: []string{"history"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, h.GetHistory)
}
