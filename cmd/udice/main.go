// Command udice rolls dice expressions and die sets from the catalog, and
// stores die sets in PostgreSQL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "udice: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	// PersistentPostRun is skipped when a command fails.
	defer a.teardown()
	return newRootCommand(a).ExecuteContext(ctx)
}
