// Package main is the entry point for the novasql CLI.
package main

import (
	"os"

	"github.com/biyonik/novasql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
