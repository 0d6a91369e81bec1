// Package cmd implements the CLI commands for the catalog-watch server.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "catalog-watch",
	Short: "Monitor catalog categories for price and assortment changes",
	Long: "An API-first service that captures periodic snapshots of catalog categories " +
		"per tenant, diffs consecutive snapshots to detect new, removed, and repriced " +
		"items, and delivers change notifications.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
