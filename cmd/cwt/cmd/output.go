package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printMonitorsTable(states []domain.MonitorState) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TENANT\tCATEGORY\tINTERVAL\tSTARTED\n")
	for i := range states {
		tw.writef("%s\t%s\t%s\t%s\n",
			states[i].Tenant,
			truncate(states[i].Category, 40),
			states[i].Interval,
			states[i].StartedAt.Format(timeLayout),
		)
	}
	return tw.finish()
}

func printHistoryTable(trail []domain.PricePoint) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("SEQ\tPRICE\tCAPTURED\n")
	for i := range trail {
		tw.writef("%d\t%d\t%s\n",
			trail[i].Seq,
			trail[i].Price,
			trail[i].CapturedAt.Format(timeLayout),
		)
	}
	return tw.finish()
}

func printSnapshotDetail(snap *domain.Snapshot) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Tenant:\t%s\n", snap.Tenant)
	tw.writef("Seq:\t%d\n", snap.Seq)
	tw.writef("Captured:\t%s\n", snap.CapturedAt.Format(timeLayout))
	tw.writef("Items:\t%d\n", len(snap.Records))
	tw.writef("\n")
	tw.writef("ID\tPRICE\tRATING\tNAME\n")
	for i := range snap.Records {
		tw.writef("%d\t%d\t%s\t%s\n",
			snap.Records[i].ID,
			snap.Records[i].Price,
			snap.Records[i].Rating,
			truncate(snap.Records[i].Name, 60),
		)
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
