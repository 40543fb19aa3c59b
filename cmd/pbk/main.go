// Package main is the entry point for the pbk CLI tool.
package main

import (
	"os"

	"github.com/pbk-dev/pbk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
