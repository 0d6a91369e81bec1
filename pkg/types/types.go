// Package domain defines the core business types for catalog-watch.
package domain

import (
	"time"
)

// Record is one observed catalog item within a snapshot. Immutable.
type Record struct {
	ID     int64  `json:"id"               db:"id"`
	Price  int64  `json:"price"            db:"price"`
	Name   string `json:"name"             db:"name"`
	Rating string `json:"rating,omitempty" db:"rating"`
}

// DefaultRating is used when the collector could not observe a rating.
const DefaultRating = "0"

// Snapshot is one normalized, timestamped capture of a tenant's category.
// Records are sorted ascending by ID with no duplicate IDs. Snapshots are
// owned by the store and immutable once written.
type Snapshot struct {
	Tenant     string    `json:"tenant"      db:"tenant_id"`
	Seq        int       `json:"seq"         db:"seq"`
	Records    []Record  `json:"records"     db:"records"`
	CapturedAt time.Time `json:"captured_at" db:"captured_at"`
}

// Cheapest returns the record with the lowest price, or nil when the
// snapshot holds no records. Ties resolve to the first record in ID order.
func (s *Snapshot) Cheapest() *Record {
	if len(s.Records) == 0 {
		return nil
	}
	best := &s.Records[0]
	for i := 1; i < len(s.Records); i++ {
		if s.Records[i].Price < best.Price {
			best = &s.Records[i]
		}
	}
	return best
}

// Lookup returns the record with the given ID, or nil. Records are sorted,
// but snapshots are small enough that a linear scan is fine.
func (s *Snapshot) Lookup(id int64) *Record {
	for i := range s.Records {
		if s.Records[i].ID == id {
			return &s.Records[i]
		}
	}
	return nil
}

// ItemChange describes an item that appeared in or disappeared from a
// category between two snapshots.
type ItemChange struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// PriceChange describes a per-item price movement between two snapshots.
// Delta is current minus previous, so negative means the price dropped.
type PriceChange struct {
	ID    int64 `json:"id"`
	Delta int64 `json:"delta"`
}

// PricePoint is one entry in an item's price trail.
type PricePoint struct {
	Seq        int       `json:"seq"`
	CapturedAt time.Time `json:"captured_at"`
	Price      int64     `json:"price"`
}

// MonitorState describes one active monitor job as reported by the registry.
type MonitorState struct {
	Tenant    string        `json:"tenant"`
	Category  string        `json:"category"`
	Interval  time.Duration `json:"interval"`
	StartedAt time.Time     `json:"started_at"`
}
