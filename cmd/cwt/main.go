// Package main is the entry point for the cwt CLI.
package main

import (
	"github.com/donaldgifford/catalog-watch/cmd/cwt/cmd"
)

func main() {
	cmd.Execute()
}
