// Package monitor implements the per-tenant monitoring core: the recurring
// job that captures, persists, and diffs category snapshots, and the
// registry that owns at most one live job per tenant.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donaldgifford/catalog-watch/internal/collector"
	"github.com/donaldgifford/catalog-watch/internal/diff"
	"github.com/donaldgifford/catalog-watch/internal/metrics"
	"github.com/donaldgifford/catalog-watch/internal/notify"
	"github.com/donaldgifford/catalog-watch/internal/store"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// defaultRetryBackoff is how long a job sleeps after a recoverable failure
// before retrying the cycle. Deliberately shorter than any sane interval.
const defaultRetryBackoff = 60 * time.Second

// stopNotifyTimeout bounds the best-effort "monitoring stopped" message sent
// after the job's own context is already cancelled.
const stopNotifyTimeout = 5 * time.Second

// Job is the monitoring loop for one tenant. Each cycle collects the
// category, persists a normalized snapshot, reports the cheapest item, and
// diffs against the previous snapshot. A job runs until its context is
// cancelled; recoverable failures are reported and retried, never fatal.
type Job struct {
	tenant   string
	category string
	interval time.Duration

	store     store.Store
	collector collector.Collector
	notifier  notify.Notifier
	log       *slog.Logger

	retryBackoff time.Duration
}

// JobOption configures a Job.
type JobOption func(*Job)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) JobOption {
	return func(j *Job) {
		j.log = l
	}
}

// WithRetryBackoff overrides the failure back-off (shortened in tests).
func WithRetryBackoff(d time.Duration) JobOption {
	return func(j *Job) {
		j.retryBackoff = d
	}
}

// NewJob creates a monitor job for one tenant's category subscription.
func NewJob(
	tenant, category string,
	interval time.Duration,
	s store.Store,
	c collector.Collector,
	n notify.Notifier,
	opts ...JobOption,
) *Job {
	j := &Job{
		tenant:       tenant,
		category:     category,
		interval:     interval,
		store:        s,
		collector:    c,
		notifier:     n,
		log:          slog.Default(),
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run executes the monitoring loop until ctx is cancelled. It always
// returns the context's error; nothing else terminates the loop.
func (j *Job) Run(ctx context.Context) error {
	j.log.Info("monitor job starting",
		"tenant", j.tenant,
		"category", j.category,
		"interval", j.interval,
	)

	for {
		if err := ctx.Err(); err != nil {
			break
		}

		wait := j.interval
		if err := j.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			j.log.Warn("cycle failed, backing off",
				"tenant", j.tenant,
				"backoff", j.retryBackoff,
				"error", err,
			)
			wait = j.retryBackoff
		}

		if err := j.sleep(ctx, wait); err != nil {
			break
		}
	}

	j.notifyStopped()
	j.log.Info("monitor job stopped", "tenant", j.tenant)
	return ctx.Err()
}

// runCycle executes one collect-persist-summarize-diff-notify pass. A
// returned error means the cycle should be retried after the back-off;
// context cancellation surfaces as the context's error.
func (j *Job) runCycle(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	j.notifyBestEffort(ctx, fmt.Sprintf("Checking category %q...", j.category))

	// Collect.
	records, err := j.collector.Collect(ctx, j.category)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.CollectionErrorsTotal.Inc()
		j.notifyBestEffort(ctx, "Collection failed: "+err.Error())
		return fmt.Errorf("collecting %q: %w", j.category, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Persist; the store normalizes (sort by ID, dedupe first-wins).
	seq, err := j.store.AppendSnapshot(ctx, j.tenant, records)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.PersistenceErrorsTotal.Inc()
		j.notifyBestEffort(ctx, "Saving snapshot failed: "+err.Error())
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	metrics.SnapshotsTotal.Inc()

	curr, err := j.store.GetSnapshot(ctx, j.tenant, seq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.PersistenceErrorsTotal.Inc()
		j.notifyBestEffort(ctx, "Reading snapshot back failed: "+err.Error())
		return fmt.Errorf("reading snapshot %d: %w", seq, err)
	}

	// Summarize the cheapest item. An empty capture has nothing to report.
	if cheapest := curr.Cheapest(); cheapest != nil {
		j.notifyBestEffort(ctx, fmt.Sprintf(
			"Cheapest item:\nID: %d\nPrice: %d\nName: %s",
			cheapest.ID, cheapest.Price, cheapest.Name,
		))
	}

	// Diff against the previous snapshot. Skipped on the first cycle; a
	// missing predecessor is informational, not a failure.
	if seq > 0 {
		j.reportDiff(ctx, seq, curr)
	}

	metrics.CyclesTotal.Inc()
	j.notifyBestEffort(ctx, fmt.Sprintf(
		"Check of category %q complete. Next check in %s.",
		j.category, j.interval,
	))

	j.log.Info("cycle complete",
		"tenant", j.tenant,
		"seq", seq,
		"items", len(curr.Records),
		"duration", time.Since(start),
	)
	return nil
}

func (j *Job) reportDiff(ctx context.Context, seq int, curr *domain.Snapshot) {
	prev, err := j.store.GetSnapshot(ctx, j.tenant, seq-1)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		j.notifyBestEffort(ctx, "Previous snapshot not found; nothing to compare against.")
		return
	}
	if err != nil {
		j.log.Error("reading previous snapshot failed",
			"tenant", j.tenant,
			"seq", seq-1,
			"error", err,
		)
		return
	}

	j.notifyBestEffort(ctx, diff.FormatText(diff.Compare(prev, curr)))
}

// notifyBestEffort sends a message and swallows delivery failures; they are
// logged and counted but never affect control flow.
func (j *Job) notifyBestEffort(ctx context.Context, text string) {
	if err := j.notifier.Send(ctx, j.tenant, text); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		j.log.Warn("notification failed", "tenant", j.tenant, "error", err)
		return
	}
	metrics.NotificationsTotal.Inc()
}

// notifyStopped emits the terminal message on a fresh context, since the
// job's own context is already cancelled by the time it runs.
func (j *Job) notifyStopped() {
	ctx, cancel := context.WithTimeout(context.Background(), stopNotifyTimeout)
	defer cancel()
	j.notifyBestEffort(ctx, "Monitoring stopped.")
}

// sleep waits for d or returns early with the context's error on
// cancellation. This is the job's only suspension point besides the
// collector and store calls.
func (j *Job) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
