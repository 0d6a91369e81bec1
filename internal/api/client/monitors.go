package client

import (
	"context"

	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// startMonitorRequest is the body for POST /api/v1/monitors.
type startMonitorRequest struct {
	Tenant          string `json:"tenant"`
	Category        string `json:"category"`
	IntervalMinutes int    `json:"interval_minutes"`
}

// StartMonitor starts a monitor for the tenant's category and returns its
// registry state.
func (c *Client) StartMonitor(
	ctx context.Context,
	tenant, category string,
	intervalMinutes int,
) (*domain.MonitorState, error) {
	req := startMonitorRequest{
		Tenant:          tenant,
		Category:        category,
		IntervalMinutes: intervalMinutes,
	}

	var state domain.MonitorState
	if err := c.post(ctx, "/api/v1/monitors", req, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// StopMonitor stops the tenant's monitor.
func (c *Client) StopMonitor(ctx context.Context, tenant string) error {
	return c.del(ctx, "/api/v1/monitors/"+tenant, nil)
}

// ListMonitors returns the state of all active monitors.
func (c *Client) ListMonitors(ctx context.Context) ([]domain.MonitorState, error) {
	var states []domain.MonitorState
	if err := c.get(ctx, "/api/v1/monitors", &states); err != nil {
		return nil, err
	}
	return states, nil
}
