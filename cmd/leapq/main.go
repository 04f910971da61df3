// Package main provides the leapq command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/leapq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
