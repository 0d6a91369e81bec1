package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <tenant> <item_id>",
		Short: "Show an item's price history",
		Long: "Show the price trail of one catalog item across the tenant's retained\n" +
			"snapshots, oldest first. Runs of snapshots with an unchanged price are\n" +
			"collapsed into a single point.",
		Args: cobra.ExactArgs(2),
		Example: `  cwt history tenant-1 123456
  cwt history tenant-1 123456 --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing item ID %q: %w", args[1], err)
			}

			c := newClient()
			trail, err := c.GetHistory(context.Background(), args[0], itemID)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(trail)
			}
			if len(trail) == 0 {
				fmt.Printf("Item %d never appeared in tenant %q snapshots.\n", itemID, args[0])
				return nil
			}
			return printHistoryTable(trail)
		},
	}
}
