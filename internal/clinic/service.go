// Package clinic coordinates the inventory, schedule, reminder and ledger
// managers behind a single service.
//
// Every mutation runs under the service's write lock from its first check to
// its last manager call, so a multi-manager operation is never observed half
// done. Each successful mutation returns an explicit result and emits one
// events.ChangeEvent after the lock has been released.
package clinic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/domain/inventory"
	"github.com/phrazzld/clinicdesk/internal/domain/ledger"
	"github.com/phrazzld/clinicdesk/internal/domain/reminder"
	"github.com/phrazzld/clinicdesk/internal/domain/schedule"
	"github.com/phrazzld/clinicdesk/internal/events"
	"github.com/phrazzld/clinicdesk/internal/platform/logger"
	"github.com/shopspring/decimal"
)

// Options configures a Service.
type Options struct {
	DefaultThreshold int
	Window           schedule.Window
	ConsultationFee  decimal.Decimal
	Clock            domain.Clock
	Emitter          events.EventEmitter
	Logger           *slog.Logger
}

// Service is the clinic's single entry point. It is safe for concurrent use.
type Service struct {
	mu sync.RWMutex

	inventory *inventory.Tree
	schedule  *schedule.Scheduler
	reminders *reminder.Engine
	ledger    *ledger.Ledger

	opts    Options
	clock   domain.Clock
	emitter events.EventEmitter
	logger  *slog.Logger
}

// New creates a service with empty managers.
func New(opts Options) (*Service, error) {
	if opts.Window == (schedule.Window{}) {
		opts.Window = schedule.DefaultWindow
	}
	if opts.Clock == nil {
		opts.Clock = domain.SystemClock{}
	}
	if opts.Emitter == nil {
		opts.Emitter = events.NopEmitter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Service{
		opts:    opts,
		clock:   opts.Clock,
		emitter: opts.Emitter,
		logger:  opts.Logger.With("component", "clinic_service"),
	}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// reset replaces every manager with an empty one. Callers hold s.mu or own s exclusively.
func (s *Service) reset() error {
	tree, err := inventory.NewTree(s.opts.DefaultThreshold)
	if err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}
	scheduler, err := schedule.NewScheduler(s.opts.Window)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	l, err := ledger.New(s.opts.ConsultationFee, s.clock)
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}

	s.inventory = tree
	s.schedule = scheduler
	s.reminders = reminder.NewEngine(s.clock)
	s.ledger = l
	return nil
}

// mutate runs fn under the write lock.
func (s *Service) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// read runs fn under the read lock.
func (s *Service) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// emit publishes a change. The change is already committed, so failures are
// logged rather than returned.
func (s *Service) emit(ctx context.Context, typ events.Type, payload any) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewChangeEvent(typ, payload, s.clock.Now())
	if err != nil {
		log.Error("failed to build change event", "event_type", typ, "error", err)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit change event",
			"event_id", event.ID,
			"event_type", typ,
			"error", err)
		return
	}
	log.Debug("change committed", "event_id", event.ID, "event_type", typ)
}
