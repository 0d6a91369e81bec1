package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func snapshotsCmd() *cobra.Command {
	snapshotsRoot := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect stored snapshots",
	}

	snapshotsRoot.AddCommand(
		snapshotsListCmd(),
		snapshotsGetCmd(),
	)

	return snapshotsRoot
}

func snapshotsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list <tenant>",
		Short:   "List a tenant's snapshot sequence numbers",
		Args:    cobra.ExactArgs(1),
		Example: `  cwt snapshots list tenant-1`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			seqs, err := c.ListSnapshots(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(seqs)
			}
			if len(seqs) == 0 {
				fmt.Printf("No snapshots stored for tenant %q.\n", args[0])
				return nil
			}
			for _, seq := range seqs {
				fmt.Println(seq)
			}
			return nil
		},
	}
}

func snapshotsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <tenant> <seq>",
		Short: "Show one stored snapshot",
		Args:  cobra.ExactArgs(2),
		Example: `  cwt snapshots get tenant-1 3
  cwt snapshots get tenant-1 3 --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			seq, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("parsing sequence %q: %w", args[1], err)
			}

			c := newClient()
			snap, err := c.GetSnapshot(context.Background(), args[0], seq)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(snap)
			}
			return printSnapshotDetail(snap)
		},
	}
}
