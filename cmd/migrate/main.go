// Package main applies the die set store's schema migrations.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/udice/internal/config"
	"github.com/cory-johannsen/udice/internal/observability"
	"github.com/cory-johannsen/udice/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (defaults and UDICE_ environment when empty)")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dsn := cfg.Database.DSN()
	switch {
	case *direction == "up":
		_, err = postgres.MigrateUp(dsn, *steps, logger)
	case *direction == "down" && *steps > 0:
		_, err = postgres.MigrateUp(dsn, -*steps, logger)
	case *direction == "down":
		err = postgres.MigrateDown(dsn, logger)
	default:
		log.Fatalf("invalid direction %q: must be 'up' or 'down'", *direction)
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	fmt.Fprintf(os.Stdout, "migrated %s [%s]\n", *direction, time.Since(start))
}
