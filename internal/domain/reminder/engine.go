// Package reminder keeps the clinic's reminders: mirrors of booked
// appointments, low-stock warnings derived from medicines, and notes entered
// by hand.
package reminder

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
)

// ChangeKind describes what ReminderForMedicine did.
type ChangeKind string

// Possible outcomes of a medicine re-evaluation
const (
	ChangeUnchanged ChangeKind = "unchanged"
	ChangeCreated   ChangeKind = "created"
	ChangeRemoved   ChangeKind = "removed"
)

// Change is the result of re-evaluating a medicine. Reminder is the created or
// removed reminder, or the zero value when nothing changed.
type Change struct {
	Kind     ChangeKind      `json:"kind"`
	Reminder domain.Reminder `json:"reminder"`
}

// Changed reports whether the evaluation created or removed a reminder.
func (c Change) Changed() bool {
	return c.Kind != ChangeUnchanged
}

var (
	dayStart = civil.Time{}
	dayEnd   = civil.Time{Hour: 23, Minute: 59}
)

// Engine stores reminders. It is safe for concurrent use.
type Engine struct {
	mu        sync.RWMutex
	clock     domain.Clock
	reminders []domain.Reminder
}

// NewEngine creates an empty engine. clock decides the date of low-stock reminders.
func NewEngine(clock domain.Clock) *Engine {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Engine{clock: clock}
}

// ReminderForMedicine keeps the medicine's low-stock reminder in line with its
// stock: one exists if and only if quantity is at or below the threshold.
// Calling it again with the same medicine changes nothing.
func (e *Engine) ReminderForMedicine(m domain.Medicine) Change {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, exists := e.indexOfSource(domain.OriginMedicineThreshold, m.ID)
	switch {
	case m.BelowThreshold() && !exists:
		r := e.lowStockReminder(m)
		e.reminders = append(e.reminders, r)
		return Change{Kind: ChangeCreated, Reminder: r}
	case !m.BelowThreshold() && exists:
		removed := e.reminders[idx]
		e.reminders = slices.Delete(e.reminders, idx, idx+1)
		return Change{Kind: ChangeRemoved, Reminder: removed}
	default:
		return Change{Kind: ChangeUnchanged}
	}
}

// DeleteExistingMedicineReminder removes the low-stock reminder of the
// medicine with the given ID, if any.
func (e *Engine) DeleteExistingMedicineReminder(medicineID uuid.UUID) (domain.Reminder, bool) {
	return e.deleteWhere(func(r domain.Reminder) bool {
		return r.Origin == domain.OriginMedicineThreshold && r.SourceID == medicineID
	})
}

// AddForAppointment creates the reminder mirroring a. Each appointment has at
// most one reminder.
func (e *Engine) AddForAppointment(a domain.Appointment) (domain.Reminder, error) {
	r := domain.Reminder{
		ID:       uuid.New(),
		Title:    a.Title(),
		Comment:  a.Comment,
		Date:     a.Date,
		Start:    a.Start,
		End:      a.End,
		Origin:   domain.OriginAppointment,
		SourceID: a.ID,
	}
	if err := e.Add(r); err != nil {
		return domain.Reminder{}, err
	}
	return r, nil
}

// DeleteByAppointment removes the reminder mirroring the appointment with the
// given ID, if any.
func (e *Engine) DeleteByAppointment(appointmentID uuid.UUID) (domain.Reminder, bool) {
	return e.deleteWhere(func(r domain.Reminder) bool {
		return r.Origin == domain.OriginAppointment && r.SourceID == appointmentID
	})
}

// Add stores r. It rejects a reminder whose ID is taken. A manual reminder is
// also rejected when its content duplicates an existing one, and a derived
// reminder when its source already has a reminder.
func (e *Engine) Add(r domain.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.reminders {
		if existing.ID == r.ID || (r.Origin == domain.OriginManual && existing.SameContent(r)) {
			return fmt.Errorf("%w: reminder %q on %s", domain.ErrDuplicateEntry, r.Title, r.Date)
		}
	}
	if r.Origin != domain.OriginManual {
		if _, ok := e.indexOfSource(r.Origin, r.SourceID); ok {
			return fmt.Errorf("%w: %s reminder for %s", domain.ErrDuplicateEntry, r.Origin, r.SourceID)
		}
	}
	e.reminders = append(e.reminders, r)
	return nil
}

// Delete removes the reminder with the given ID.
func (e *Engine) Delete(id uuid.UUID) (domain.Reminder, bool) {
	return e.deleteWhere(func(r domain.Reminder) bool { return r.ID == id })
}

// HasDuplicate reports whether a reminder with the same content as r exists.
func (e *Engine) HasDuplicate(r domain.Reminder) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return slices.ContainsFunc(e.reminders, r.SameContent)
}

// Get returns the reminder with the given ID.
func (e *Engine) Get(id uuid.UUID) (domain.Reminder, bool) {
	return e.first(func(r domain.Reminder) bool { return r.ID == id })
}

// ForAppointment returns the reminder mirroring the given appointment.
func (e *Engine) ForAppointment(appointmentID uuid.UUID) (domain.Reminder, bool) {
	return e.first(func(r domain.Reminder) bool {
		return r.Origin == domain.OriginAppointment && r.SourceID == appointmentID
	})
}

// ForMedicine returns the low-stock reminder of the given medicine.
func (e *Engine) ForMedicine(medicineID uuid.UUID) (domain.Reminder, bool) {
	return e.first(func(r domain.Reminder) bool {
		return r.Origin == domain.OriginMedicineThreshold && r.SourceID == medicineID
	})
}

// ListByDate returns the reminders dated d, ordered by start time.
func (e *Engine) ListByDate(d civil.Date) []domain.Reminder {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []domain.Reminder{}
	for _, r := range e.reminders {
		if r.Date == d {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, domain.CompareReminders)
	return out
}

// Reminders returns every reminder in chronological order.
func (e *Engine) Reminders() []domain.Reminder {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := slices.Clone(e.reminders)
	slices.SortStableFunc(out, domain.CompareReminders)
	return out
}

func (e *Engine) lowStockReminder(m domain.Medicine) domain.Reminder {
	return domain.Reminder{
		ID:       uuid.New(),
		Title:    fmt.Sprintf("Restock %s", m.Name),
		Comment:  fmt.Sprintf("%d left in %s, threshold %d", m.Quantity, strings.Join(m.Path, "/"), m.Threshold),
		Date:     civil.DateOf(e.clock.Now()),
		Start:    dayStart,
		End:      dayEnd,
		Origin:   domain.OriginMedicineThreshold,
		SourceID: m.ID,
	}
}

// indexOfSource must be called with e.mu held.
func (e *Engine) indexOfSource(origin domain.ReminderOrigin, source uuid.UUID) (int, bool) {
	idx := slices.IndexFunc(e.reminders, func(r domain.Reminder) bool {
		return r.Origin == origin && r.SourceID == source
	})
	return idx, idx >= 0
}

func (e *Engine) deleteWhere(match func(domain.Reminder) bool) (domain.Reminder, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.reminders, match)
	if idx < 0 {
		return domain.Reminder{}, false
	}
	removed := e.reminders[idx]
	e.reminders = slices.Delete(e.reminders, idx, idx+1)
	return removed, true
}

func (e *Engine) first(match func(domain.Reminder) bool) (domain.Reminder, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx := slices.IndexFunc(e.reminders, match)
	if idx < 0 {
		return domain.Reminder{}, false
	}
	return e.reminders[idx], true
}
