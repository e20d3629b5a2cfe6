package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/clinicdesk/internal/config"
	"github.com/phrazzld/clinicdesk/internal/platform/postgres"
	"github.com/phrazzld/clinicdesk/internal/store"
)

// setupSnapshotStore picks where clinic state is kept. With a database URL it
// connects, applies pending migrations and returns the Postgres store;
// otherwise state lives in memory and is lost on exit.
func setupSnapshotStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, store.SnapshotStore, error) {
	if cfg.Database.URL == "" {
		logger.Warn("no database configured, clinic state will not survive a restart")
		return nil, store.NewMemoryStore(), nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connection established")

	if err := postgres.Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, postgres.NewSnapshotStore(db, logger), nil
}
