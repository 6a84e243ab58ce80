// Package main provides the leapcat command-line entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/leapcat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
