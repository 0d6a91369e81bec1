// Package main is the entry point for the catalog-watch server.
package main

import (
	"os"

	"github.com/donaldgifford/catalog-watch/cmd/catalog-watch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
