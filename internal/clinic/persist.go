package clinic

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/clinicdesk/internal/events"
	"github.com/phrazzld/clinicdesk/internal/platform/logger"
	"github.com/phrazzld/clinicdesk/internal/store"
)

// SaveObserver is told about every snapshot save.
type SaveObserver interface {
	ObserveSnapshotSave(start time.Time, err error)
}

// Persister saves a fresh snapshot of the service after every change.
// It implements events.EventHandler.
type Persister struct {
	mu       sync.Mutex
	service  *Service
	store    store.SnapshotStore
	observer SaveObserver
	logger   *slog.Logger
}

// NewPersister creates a Persister. observer may be nil.
func NewPersister(service *Service, snapshots store.SnapshotStore, observer SaveObserver, logger *slog.Logger) *Persister {
	return &Persister{
		service:  service,
		store:    snapshots,
		observer: observer,
		logger:   logger.With("component", "snapshot_persister"),
	}
}

// HandleEvent implements events.EventHandler. Saves are serialized and each
// takes its snapshot after acquiring the lock, so a later save never writes
// older state than an earlier one.
func (p *Persister) HandleEvent(ctx context.Context, event *events.ChangeEvent) error {
	if event.Type == events.StateRestored {
		return nil
	}
	return p.Save(ctx)
}

// Save writes the current state.
func (p *Persister) Save(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := logger.FromContextOrDefault(ctx, p.logger)
	start := time.Now()
	err := p.store.Save(ctx, p.service.Snapshot())
	if p.observer != nil {
		p.observer.ObserveSnapshotSave(start, err)
	}
	if err != nil {
		log.Error("failed to save snapshot", "error", err)
		return err
	}
	log.Debug("snapshot saved", "duration", time.Since(start))
	return nil
}

// LoadState restores the service from the store. An empty store is not an
// error. Entries skipped during restore are logged and reported in the result.
func LoadState(ctx context.Context, service *Service, snapshots store.SnapshotStore) (RestoreResult, error) {
	snap, err := snapshots.Load(ctx)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return RestoreResult{}, nil
	}
	if err != nil {
		return RestoreResult{}, err
	}

	res, err := service.Restore(ctx, snap)
	if err != nil && res.Skipped > 0 {
		logger.FromContextOrDefault(ctx, service.logger).Warn("some stored entries were skipped",
			"skipped", res.Skipped,
			"error", err)
		return res, nil
	}
	return res, err
}
