// Package main provides the CLI for LeapGeo.
package main

import (
	"os"

	"github.com/leapstack-labs/leapgeo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
