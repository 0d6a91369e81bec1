// Package diff compares two normalized snapshots and reports what changed.
// Compare is pure: identical inputs always produce identical results.
package diff

import (
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// Result is the structured change report between two consecutive snapshots.
// It is derived, never persisted, and never mutated after construction.
type Result struct {
	PrevCount      int                  `json:"prev_count"`
	CurrCount      int                  `json:"curr_count"`
	PrevCapturedAt string               `json:"prev_captured_at"`
	CurrCapturedAt string               `json:"curr_captured_at"`
	NewItems       []domain.ItemChange  `json:"new_items,omitempty"`
	RemovedItems   []domain.ItemChange  `json:"removed_items,omitempty"`
	PriceChanges   []domain.PriceChange `json:"price_changes,omitempty"`
}

// Changed reports whether the two snapshots differ at all.
func (r *Result) Changed() bool {
	return r.PrevCount != r.CurrCount ||
		len(r.NewItems) > 0 ||
		len(r.RemovedItems) > 0 ||
		len(r.PriceChanges) > 0
}

// Compare walks both ID-sorted record sequences with two cursors, looking
// ahead by one to classify single-item inserts and removals.
//
// This is a best-effort heuristic diff, not a full alignment: it tolerates
// isolated insert/delete drift but can lose synchronization under bursts of
// two or more consecutive structural changes between captures. Downstream
// consumers depend on the documented heuristic; do not upgrade it to an
// edit-distance alignment without changing the contract.
func Compare(prev, curr *domain.Snapshot) *Result {
	res := &Result{
		PrevCount:      len(prev.Records),
		CurrCount:      len(curr.Records),
		PrevCapturedAt: prev.CapturedAt.Format(TimeLayout),
		CurrCapturedAt: curr.CapturedAt.Format(TimeLayout),
	}

	p, c := prev.Records, curr.Records
	i, j := 0, 0
	for i < len(p) && j < len(c) {
		switch {
		case p[i].ID == c[j].ID:
			if p[i].Price != c[j].Price {
				res.PriceChanges = append(res.PriceChanges, domain.PriceChange{
					ID:    c[j].ID,
					Delta: c[j].Price - p[i].Price,
				})
			}
			i++
			j++
		case j+1 < len(c) && p[i].ID == c[j+1].ID:
			// c[j] slotted in before the next aligned pair: a new item.
			res.NewItems = append(res.NewItems, domain.ItemChange{
				ID:    c[j].ID,
				Name:  c[j].Name,
				Price: c[j].Price,
			})
			j++
		case i+1 < len(p) && p[i+1].ID == c[j].ID:
			// p[i] has no counterpart ahead: removed.
			res.RemovedItems = append(res.RemovedItems, domain.ItemChange{
				ID:    p[i].ID,
				Name:  p[i].Name,
				Price: p[i].Price,
			})
			i++
		default:
			// Unrelated at this alignment; skip both and resynchronize.
			i++
			j++
		}
	}

	// Whatever remains past the shorter sequence was appended or dropped
	// at the tail.
	for ; j < len(c); j++ {
		res.NewItems = append(res.NewItems, domain.ItemChange{
			ID:    c[j].ID,
			Name:  c[j].Name,
			Price: c[j].Price,
		})
	}
	for ; i < len(p); i++ {
		res.RemovedItems = append(res.RemovedItems, domain.ItemChange{
			ID:    p[i].ID,
			Name:  p[i].Name,
			Price: p[i].Price,
		})
	}

	return res
}
