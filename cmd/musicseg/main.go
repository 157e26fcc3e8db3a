// Package main is the entry point for the musicseg CLI.
//
// Usage:
//
//	musicseg [flags] <command> [args]
//
// Commands:
//
//	algorithms - List registered algorithms
//	tracks     - List the tracks of the dataset
//	config     - Print the run configuration of an algorithm pair
//	run        - Segment one track with an algorithm pair
//	batch      - Run every algorithm pair on one track
//	refs       - Manage the reference annotation database
//	settings   - Show the CLI settings
//	version    - Show version information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haivivi/musicseg/cmd/musicseg/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
