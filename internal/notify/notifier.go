// Package notify defines the notification capability consumed by monitor
// jobs and its implementations. Delivery is best-effort: a failed send is
// logged and counted, never escalated to job termination.
package notify

import (
	"context"
)

// Notifier delivers a text message to a tenant.
type Notifier interface {
	Send(ctx context.Context, tenantID, text string) error
}
