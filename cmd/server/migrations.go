package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/clinicdesk/internal/config"
	"github.com/phrazzld/clinicdesk/internal/platform/postgres"
)

// errNoDatabase is returned when a migration command runs without a database URL.
var errNoDatabase = errors.New("database URL is empty: set CLINIC_DATABASE_URL or database.url")

// handleMigrations runs a single goose command against the configured database.
func handleMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if cfg.Database.URL == "" {
		return errNoDatabase
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
		}
	}()

	return postgres.RunMigrationCommand(ctx, db, logger, command)
}
