package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/clinicdesk/internal/clinic"
	"github.com/phrazzld/clinicdesk/internal/config"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/domain/schedule"
	"github.com/phrazzld/clinicdesk/internal/events"
	"github.com/phrazzld/clinicdesk/internal/platform/metrics"
	"github.com/phrazzld/clinicdesk/internal/service/auth"
	"github.com/phrazzld/clinicdesk/internal/store"
)

// application holds the shared dependencies of the server so they can be
// wired once and released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB // nil when state is kept in memory

	snapshots  store.SnapshotStore
	clinic     *clinic.Service
	persister  *clinic.Persister
	jwtService auth.JWTService
	metrics    *metrics.Metrics
	emitter    *events.InMemoryEventEmitter
}

// newApplication builds the clinic service from cfg, restores the last saved
// state from snapshots and registers the handlers that persist and count
// every later change.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	snapshots store.SnapshotStore,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		snapshots: snapshots,
		metrics:   metrics.New(),
		emitter:   events.NewInMemoryEventEmitter(logger),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime", cfg.Auth.TokenLifetime.String())

	opts, err := clinicOptions(cfg.Clinic)
	if err != nil {
		return nil, err
	}
	opts.Emitter = app.emitter
	opts.Logger = logger

	app.clinic, err = clinic.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create clinic service: %w", err)
	}

	restored, err := clinic.LoadState(ctx, app.clinic, snapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to restore clinic state: %w", err)
	}
	logger.Info("Clinic state restored",
		"directories", restored.Directories,
		"medicines", restored.Medicines,
		"appointments", restored.Appointments,
		"reminders", restored.Reminders,
		"records", restored.Records,
		"skipped", restored.Skipped)

	app.persister = clinic.NewPersister(app.clinic, snapshots, app.metrics, logger)
	app.emitter.RegisterHandler(app.metrics)
	app.emitter.RegisterHandler(app.persister)

	logger.Info("Application initialized successfully")
	return app, nil
}

// clinicOptions turns the clinic settings into service options.
func clinicOptions(cfg config.ClinicConfig) (clinic.Options, error) {
	open, closing, err := cfg.OperatingHours()
	if err != nil {
		return clinic.Options{}, err
	}
	fee, err := cfg.Fee()
	if err != nil {
		return clinic.Options{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return clinic.Options{}, err
	}
	return clinic.Options{
		DefaultThreshold: cfg.DefaultThreshold,
		Window:           schedule.Window{Open: open, Close: closing},
		ConsultationFee:  fee,
		Clock:            domain.SystemClock{Location: loc},
	}, nil
}

// Run serves the API until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup writes a final snapshot and releases the database connection.
func (app *application) cleanup(ctx context.Context) {
	if err := app.persister.Save(ctx); err != nil {
		app.logger.Error("Final snapshot save failed", "error", err)
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
