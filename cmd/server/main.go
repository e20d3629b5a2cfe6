// Package main runs the clinic desk API server: the medicine inventory,
// appointment book, reminders and financial records of a single clinic.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/clinicdesk/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		fmt.Sprintf("run a migration command %v against the configured database and exit", postgres.MigrationCommands))
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd); err != nil {
		log.Fatalf("clinicdesk: %v", err)
	}
}

// run loads configuration and logging, then either runs a migration command
// or serves the API until ctx is cancelled.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		return handleMigrations(ctx, cfg, logger, migrateCmd)
	}

	db, snapshots, err := setupSnapshotStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, logger, db, snapshots)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return err
	}
	return app.Run(ctx)
}
