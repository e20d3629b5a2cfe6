// Package schedule keeps the clinic's appointments and answers conflict and
// availability questions about them. It knows nothing about reminders.
package schedule

import (
	"fmt"
	"slices"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
)

// Scheduler owns a flat collection of appointments. It is safe for concurrent use.
type Scheduler struct {
	mu           sync.RWMutex
	appointments []domain.Appointment
	window       Window
}

// NewScheduler creates an empty scheduler using the given operating window
// for free-slot computation.
func NewScheduler(window Window) (*Scheduler, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{window: window}, nil
}

// Window returns the configured operating window.
func (s *Scheduler) Window() Window {
	return s.window
}

// HasConflict reports whether any stored appointment on the same date overlaps a.
// Intervals are half-open, so touching endpoints do not conflict.
func (s *Scheduler) HasConflict(a domain.Appointment) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, existing := range s.appointments {
		if existing.ID != a.ID && existing.Overlaps(a) {
			return true
		}
	}
	return false
}

// Add stores a. Callers must have checked HasConflict first; Add does not
// re-check overlaps. It does reject malformed appointments and duplicates.
func (s *Scheduler) Add(a domain.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.appointments {
		if existing.ID == a.ID || existing.SameBooking(a) {
			return fmt.Errorf("%w: appointment on %s at %s", domain.ErrDuplicateEntry, a.Date, a.Start)
		}
	}
	s.appointments = append(s.appointments, a)
	return nil
}

// Delete removes the appointment with the given ID and returns it.
func (s *Scheduler) Delete(id uuid.UUID) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.appointments {
		if existing.ID == id {
			s.appointments = slices.Delete(s.appointments, i, i+1)
			return existing, nil
		}
	}
	return domain.Appointment{}, fmt.Errorf("%w: %s", domain.ErrAppointmentNotFound, id)
}

// GetByID returns the appointment with the given ID.
func (s *Scheduler) GetByID(id uuid.UUID) (domain.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Appointment{}, false
}

// Get returns the appointment starting at start on date.
func (s *Scheduler) Get(date civil.Date, start civil.Time) (domain.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.appointments {
		if a.Date == date && a.Start == start {
			return a, true
		}
	}
	return domain.Appointment{}, false
}

// ListBetween returns appointments dated within [start, end], ordered by date
// then start time.
func (s *Scheduler) ListBetween(start, end civil.Date) ([]domain.Appointment, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s after %s", domain.ErrInvalidDateRange, start, end)
	}
	return s.filter(func(a domain.Appointment) bool {
		return domain.DateInRange(a.Date, start, end)
	}), nil
}

// ListForPatient returns the patient's appointments, ordered by date then start time.
func (s *Scheduler) ListForPatient(p domain.Patient) []domain.Appointment {
	return s.filter(func(a domain.Appointment) bool {
		return a.Patient.NRIC == p.NRIC
	})
}

// Appointments returns every appointment in chronological order.
func (s *Scheduler) Appointments() []domain.Appointment {
	return s.filter(func(domain.Appointment) bool { return true })
}

// FreeSlots returns, for each date in [start, end], the parts of the operating
// window not covered by any appointment. Dates with no free time carry an
// empty slot list.
func (s *Scheduler) FreeSlots(start, end civil.Date) ([]DaySlots, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s after %s", domain.ErrInvalidDateRange, start, end)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	days := make([]DaySlots, 0, end.DaysSince(start)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, DaySlots{
			Date:  d,
			Slots: freeSlots(s.window, busySlots(s.appointments, d)),
		})
	}
	return days, nil
}

func (s *Scheduler) filter(keep func(domain.Appointment) bool) []domain.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Appointment{}
	for _, a := range s.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, domain.CompareAppointments)
	return out
}
