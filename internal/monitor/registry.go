package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/donaldgifford/catalog-watch/internal/collector"
	"github.com/donaldgifford/catalog-watch/internal/metrics"
	"github.com/donaldgifford/catalog-watch/internal/notify"
	"github.com/donaldgifford/catalog-watch/internal/store"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

var (
	// ErrAlreadyRunning is returned by Start when the tenant has a live job.
	ErrAlreadyRunning = errors.New("monitor already running for tenant")

	// ErrNotRunning is returned by Stop when the tenant has no live job.
	ErrNotRunning = errors.New("no monitor running for tenant")
)

// handle tracks one live job. The done channel closes only after the job
// has fully terminated and its registry entry has been released.
type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	state  domain.MonitorState
}

// Registry owns the process-wide mapping from tenant to its single live
// monitor job. All map mutation happens under one mutex; jobs themselves
// run in their own goroutines and remove their entry on termination.
type Registry struct {
	store     store.Store
	collector collector.Collector
	notifier  notify.Notifier
	log       *slog.Logger
	jobOpts   []JobOption

	mu   sync.Mutex
	jobs map[string]*handle
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets a custom logger for the registry and its jobs.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = l
		r.jobOpts = append(r.jobOpts, WithLogger(l))
	}
}

// WithJobOptions forwards options to every job the registry creates.
func WithJobOptions(opts ...JobOption) RegistryOption {
	return func(r *Registry) {
		r.jobOpts = append(r.jobOpts, opts...)
	}
}

// NewRegistry creates a registry with no active jobs.
func NewRegistry(
	s store.Store,
	c collector.Collector,
	n notify.Notifier,
	opts ...RegistryOption,
) *Registry {
	r := &Registry{
		store:     s,
		collector: c,
		notifier:  n,
		log:       slog.Default(),
		jobs:      make(map[string]*handle),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches a monitor job for the tenant. The check-and-insert is
// atomic: two concurrent Start calls for the same tenant yield exactly one
// live job and one ErrAlreadyRunning.
func (r *Registry) Start(tenant, category string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &handle{
		cancel: cancel,
		done:   make(chan struct{}),
		state: domain.MonitorState{
			Tenant:    tenant,
			Category:  category,
			Interval:  interval,
			StartedAt: time.Now(),
		},
	}

	r.mu.Lock()
	if _, exists := r.jobs[tenant]; exists {
		r.mu.Unlock()
		cancel()
		return ErrAlreadyRunning
	}
	r.jobs[tenant] = h
	r.mu.Unlock()

	job := NewJob(tenant, category, interval, r.store, r.collector, r.notifier, r.jobOpts...)
	metrics.ActiveJobs.Inc()

	go func() {
		defer close(h.done)
		defer metrics.ActiveJobs.Dec()
		defer r.release(tenant, h)
		_ = job.Run(ctx)
	}()

	r.log.Info("monitor started", "tenant", tenant, "category", category, "interval", interval)
	return nil
}

// Stop cancels the tenant's job and waits for it to acknowledge
// termination; ctx bounds the wait. The registry entry is gone by the time
// Stop returns nil, so an immediate Start for the same tenant succeeds.
func (r *Registry) Stop(ctx context.Context, tenant string) error {
	r.mu.Lock()
	h, exists := r.jobs[tenant]
	r.mu.Unlock()

	if !exists {
		return ErrNotRunning
	}

	h.cancel()

	select {
	case <-h.done:
		r.log.Info("monitor stopped", "tenant", tenant)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for job shutdown: %w", ctx.Err())
	}
}

// Active returns the state of all live jobs, sorted by tenant.
func (r *Registry) Active() []domain.MonitorState {
	r.mu.Lock()
	states := make([]domain.MonitorState, 0, len(r.jobs))
	for _, h := range r.jobs {
		states = append(states, h.state)
	}
	r.mu.Unlock()

	sort.Slice(states, func(i, j int) bool {
		return states[i].Tenant < states[j].Tenant
	})
	return states
}

// StopAll cancels every live job and waits for each to terminate; used on
// graceful shutdown. Returns the first wait error encountered.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	handles := make([]*handle, 0, len(r.jobs))
	for _, h := range r.jobs {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}

	for _, h := range handles {
		select {
		case <-h.done:
		case <-ctx.Done():
			return fmt.Errorf("waiting for jobs shutdown: %w", ctx.Err())
		}
	}
	return nil
}

// release removes the entry if it still belongs to this handle. Runs before
// done closes, so waiters never observe a stale entry for the same tenant.
func (r *Registry) release(tenant string, h *handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.jobs[tenant] == h {
		delete(r.jobs, tenant)
	}
}
