// Package main is the entry point for the notionbackup CLI.
package main

import (
	"os"

	"github.com/jmylchreest/notionbackup/cmd/notionbackup/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
