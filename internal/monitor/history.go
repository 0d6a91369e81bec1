package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/donaldgifford/catalog-watch/internal/store"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// ErrNoHistory is returned when the tenant has no recorded snapshots.
var ErrNoHistory = errors.New("no snapshots recorded for tenant")

// History reconstructs the price trail for one item across all of a
// tenant's retained snapshots, oldest first. Consecutive snapshots where
// the price did not move collapse into a single point, so every adjacent
// pair of points carries a real price change. Snapshots pruned between
// listing and retrieval are skipped. An item absent from every snapshot
// yields an empty trail, not an error.
func History(ctx context.Context, s store.Store, tenant string, itemID int64) ([]domain.PricePoint, error) {
	seqs, err := s.ListSequences(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots for %q: %w", tenant, err)
	}
	if len(seqs) == 0 {
		return nil, ErrNoHistory
	}

	var trail []domain.PricePoint
	for _, seq := range seqs {
		snap, err := s.GetSnapshot(ctx, tenant, seq)
		if err != nil {
			if errors.Is(err, store.ErrSnapshotNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading snapshot %d for %q: %w", seq, tenant, err)
		}

		rec := snap.Lookup(itemID)
		if rec == nil {
			continue
		}
		if n := len(trail); n > 0 && trail[n-1].Price == rec.Price {
			continue
		}
		trail = append(trail, domain.PricePoint{
			Seq:        seq,
			Price:      rec.Price,
			CapturedAt: snap.CapturedAt,
		})
	}
	return trail, nil
}
