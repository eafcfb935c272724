// Package main provides the entry point for the siteassist CLI.
package main

import (
	"os"

	"github.com/siteassist/siteassist/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
