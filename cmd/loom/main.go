// Package main provides the entry point for the loom CLI.
package main

import (
	"os"

	"github.com/loomworks/loom/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
