package diff

import (
	"fmt"
	"strings"
)

// TimeLayout is the human-readable capture timestamp format echoed in
// change reports.
const TimeLayout = "02.01.2006 15:04:05"

// maxListedEntries caps each section of the text report. Aggregate counts
// are always reported in full.
const maxListedEntries = 10

// FormatText renders a Result as the notification message body.
func FormatText(r *Result) string {
	var b strings.Builder

	switch {
	case r.PrevCount > r.CurrCount:
		fmt.Fprintf(&b, "Item count dropped by %d", r.PrevCount-r.CurrCount)
	case r.CurrCount > r.PrevCount:
		fmt.Fprintf(&b, "%d new items appeared", r.CurrCount-r.PrevCount)
	default:
		b.WriteString("Item count unchanged")
	}
	fmt.Fprintf(&b, " (%d -> %d, %s -> %s)",
		r.PrevCount, r.CurrCount, r.PrevCapturedAt, r.CurrCapturedAt)

	if !r.Changed() {
		b.WriteString("\n\nNo changes detected")
		return b.String()
	}

	if len(r.NewItems) > 0 {
		b.WriteString("\n\nNew items:")
		for _, item := range capItems(r.NewItems) {
			fmt.Fprintf(&b, "\nID: %d, Name: %s, Price: %d", item.ID, item.Name, item.Price)
		}
		if extra := len(r.NewItems) - maxListedEntries; extra > 0 {
			fmt.Fprintf(&b, "\n... and %d more", extra)
		}
	}

	if len(r.RemovedItems) > 0 {
		b.WriteString("\n\nRemoved items:")
		for _, item := range capItems(r.RemovedItems) {
			fmt.Fprintf(&b, "\nID: %d, Name: %s, Price: %d", item.ID, item.Name, item.Price)
		}
		if extra := len(r.RemovedItems) - maxListedEntries; extra > 0 {
			fmt.Fprintf(&b, "\n... and %d more", extra)
		}
	}

	if len(r.PriceChanges) > 0 {
		b.WriteString("\n\nPrice changes:")
		changes := r.PriceChanges
		if len(changes) > maxListedEntries {
			changes = changes[:maxListedEntries]
		}
		for _, pc := range changes {
			fmt.Fprintf(&b, "\nItem %d price changed by %+d", pc.ID, pc.Delta)
		}
		if extra := len(r.PriceChanges) - maxListedEntries; extra > 0 {
			fmt.Fprintf(&b, "\n... and %d more", extra)
		}
	}

	return b.String()
}

func capItems[T any](items []T) []T {
	if len(items) > maxListedEntries {
		return items[:maxListedEntries]
	}
	return items
}
