// The main package for the menufetcher executable.
package main

import (
	"context"
	"os/signal"
	"syscall"
	// Facility time zones must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/JakeFAU/menufetcher/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
