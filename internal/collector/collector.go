// Package collector defines the catalog collector capability consumed by
// monitor jobs. How a collector locates and reads items is its own concern;
// jobs only see the Record shape.
package collector

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// ErrEmpty is returned when a collection run yields no items. An empty
// category page usually means the upstream served a placeholder, so jobs
// treat it as a collection failure and retry.
var ErrEmpty = errors.New("collection returned no items")

// Collector produces raw item records for a category.
type Collector interface {
	Collect(ctx context.Context, category string) ([]domain.Record, error)
}
