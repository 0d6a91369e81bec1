package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, ActiveJobs)
	assert.NotNil(t, CycleDuration)
	assert.NotNil(t, CyclesTotal)
	assert.NotNil(t, CollectionErrorsTotal)
	assert.NotNil(t, PersistenceErrorsTotal)
	assert.NotNil(t, SnapshotsTotal)
	assert.NotNil(t, SnapshotsPrunedTotal)
	assert.NotNil(t, CollectorRequestsTotal)
	assert.NotNil(t, NotificationsTotal)
	assert.NotNil(t, NotificationFailuresTotal)
}
