// Package main is the entry point for the quotectl CLI.
package main

import (
	"os"

	"github.com/Simplici0/quotedesk/cmd/quotectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
