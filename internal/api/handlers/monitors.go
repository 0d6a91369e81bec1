package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/catalog-watch/internal/monitor"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// MonitorsProvider defines the registry methods required by the monitors
// handler.
type MonitorsProvider interface {
	Start(tenant, category string, interval time.Duration) error
	Stop(ctx context.Context, tenant string) error
	Active() []domain.MonitorState
}

// MonitorsHandler handles monitor lifecycle requests.
type MonitorsHandler struct {
	registry    MonitorsProvider
	minInterval time.Duration
}

// NewMonitorsHandler creates a new MonitorsHandler. Start requests below
// minInterval are rejected.
func NewMonitorsHandler(r MonitorsProvider, minInterval time.Duration) *MonitorsHandler {
	return &MonitorsHandler{registry: r, minInterval: minInterval}
}

// StartMonitorInput is the request body for starting a monitor.
type StartMonitorInput struct {
	Body struct {
		Tenant          string `json:"tenant" minLength:"1" doc:"Tenant identifier"`
		Category        string `json:"category" minLength:"1" doc:"Catalog category to watch"`
		IntervalMinutes int    `json:"interval_minutes" minimum:"1" doc:"Minutes between checks"`
	}
}

// StartMonitorOutput is the response for a started monitor.
type StartMonitorOutput struct {
	Status int
	Body   domain.MonitorState
}

// StopMonitorInput is the request path for stopping a monitor.
type StopMonitorInput struct {
	Tenant string `path:"tenant" doc:"Tenant identifier"`
}

// ListMonitorsOutput is the response body for listing active monitors.
type ListMonitorsOutput struct {
	Body []domain.MonitorState
}

const stopWaitTimeout = 10 * time.Second

// StartMonitor launches a monitor job for the tenant's category.
func (h *MonitorsHandler) StartMonitor(
	_ context.Context,
	input *StartMonitorInput,
) (*StartMonitorOutput, error) {
	interval := time.Duration(input.Body.IntervalMinutes) * time.Minute
	if interval < h.minInterval {
		return nil, huma.Error422UnprocessableEntity(
			"interval must be at least " + h.minInterval.String(),
		)
	}

	err := h.registry.Start(input.Body.Tenant, input.Body.Category, interval)
	if errors.Is(err, monitor.ErrAlreadyRunning) {
		return nil, huma.Error409Conflict("monitor already running for tenant " + input.Body.Tenant)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("starting monitor failed: " + err.Error())
	}

	out := &StartMonitorOutput{Status: http.StatusCreated}
	for _, state := range h.registry.Active() {
		if state.Tenant == input.Body.Tenant {
			out.Body = state
			break
		}
	}
	return out, nil
}

// StopMonitor stops the tenant's monitor job and waits for it to terminate.
func (h *MonitorsHandler) StopMonitor(
	ctx context.Context,
	input *StopMonitorInput,
) (*struct{}, error) {
	ctx, cancel := context.WithTimeout(ctx, stopWaitTimeout)
	defer cancel()

	err := h.registry.Stop(ctx, input.Tenant)
	if errors.Is(err, monitor.ErrNotRunning) {
		return nil, huma.Error404NotFound("no monitor running for tenant " + input.Tenant)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("stopping monitor failed: " + err.Error())
	}
	return &struct{}{}, nil
}

// ListMonitors returns the state of all active monitor jobs.
func (h *MonitorsHandler) ListMonitors(
	_ context.Context,
	_ *struct{},
) (*ListMonitorsOutput, error) {
	states := h.registry.Active()
	if states == nil {
		states = []domain.MonitorState{}
	}
	return &ListMonitorsOutput{Body: states}, nil
}

// RegisterMonitorRoutes registers monitor lifecycle endpoints with the Huma API.
func RegisterMonitorRoutes(api huma.API, h *MonitorsHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "start-monitor",
		Method:        http.MethodPost,
		Path:          "/api/v1/monitors",
		Summary:       "Start a monitor",
		Description:   "Starts a recurring category check for the tenant.",
		Tags:          []string{"monitors"},
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusConflict,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, h.StartMonitor)

	huma.Register(api, huma.Operation{
		OperationID:   "stop-monitor",
		Method:        http.MethodDelete,
		Path:          "/api/v1/monitors/{tenant}",
		Summary:       "Stop a monitor",
		Description:   "Stops the tenant's monitor and waits for its job to terminate.",
		Tags:          []string{"monitors"},
		DefaultStatus: http.StatusNoContent,
		Errors: []int{
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, h.StopMonitor)

	huma.Register(api, huma.Operation{
		OperationID: "list-monitors",
		Method:      http.MethodGet,
		Path:        "/api/v1/monitors",
		Summary:     "List active monitors",
		Description: "Returns the state of every active monitor job, sorted by tenant.",
		Tags:        []string{"monitors"},
	}, h.ListMonitors)
}
