// Package main is the scribe entry point.
package main

import (
	"os"

	"github.com/scribe-term/scribe/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
