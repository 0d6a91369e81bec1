package client

import (
	"context"
	"fmt"

	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// GetHistory returns the price trail for one item, oldest point first.
func (c *Client) GetHistory(
	ctx context.Context,
	tenant string,
	itemID int64,
) ([]domain.PricePoint, error) {
	var trail []domain.PricePoint
	path := fmt.Sprintf("/api/v1/tenants/%s/history/%d", tenant, itemID)
	if err := c.get(ctx, path, &trail); err != nil {
		return nil, err
	}
	return trail, nil
}

// ListSnapshots returns the tenant's snapshot sequence numbers in ascending
// order.
func (c *Client) ListSnapshots(ctx context.Context, tenant string) ([]int, error) {
	var seqs []int
	if err := c.get(ctx, "/api/v1/tenants/"+tenant+"/snapshots", &seqs); err != nil {
		return nil, err
	}
	return seqs, nil
}

// GetSnapshot returns one stored snapshot by sequence number.
func (c *Client) GetSnapshot(
	ctx context.Context,
	tenant string,
	seq int,
) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	path := fmt.Sprintf("/api/v1/tenants/%s/snapshots/%d", tenant, seq)
	if err := c.get(ctx, path, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
