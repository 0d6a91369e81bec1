package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func monitorsCmd() *cobra.Command {
	monitorsRoot := &cobra.Command{
		Use:   "monitors",
		Short: "Manage category monitors",
		Long: "Start, stop, and inspect recurring category monitors. Each tenant can\n" +
			"have at most one active monitor.",
	}

	monitorsRoot.AddCommand(
		monitorsStartCmd(),
		monitorsStopCmd(),
		monitorsListCmd(),
	)

	return monitorsRoot
}

func monitorsStartCmd() *cobra.Command {
	var interval int

	cmd := &cobra.Command{
		Use:   "start <tenant> <category>",
		Short: "Start a monitor for a tenant's category",
		Args:  cobra.ExactArgs(2),
		Example: `  cwt monitors start tenant-1 "running shoes"
  cwt monitors start tenant-1 "running shoes" --interval 30`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			state, err := c.StartMonitor(context.Background(), args[0], args[1], interval)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(state)
			}
			fmt.Printf("Monitor started for tenant %q, category %q, every %s.\n",
				state.Tenant, state.Category, state.Interval)
			return nil
		},
	}

	cmd.Flags().IntVar(&interval, "interval", 60, "minutes between checks")
	return cmd
}

func monitorsStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stop <tenant>",
		Short:   "Stop a tenant's monitor",
		Args:    cobra.ExactArgs(1),
		Example: `  cwt monitors stop tenant-1`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.StopMonitor(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Monitor stopped for tenant %q.\n", args[0])
			return nil
		},
	}
}

func monitorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active monitors",
		Example: `  cwt monitors list
  cwt monitors list --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			states, err := c.ListMonitors(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(states)
			}
			if len(states) == 0 {
				fmt.Println("No active monitors.")
				return nil
			}
			return printMonitorsTable(states)
		},
	}
}
