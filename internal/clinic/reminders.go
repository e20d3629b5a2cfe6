package clinic

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/events"
)

// NewReminder holds the fields of a manually entered reminder.
type NewReminder struct {
	Title   string
	Comment string
	Date    civil.Date
	Start   civil.Time
	End     civil.Time
}

// AddReminder stores a manual reminder. A reminder with the same content as an
// existing one yields domain.ErrDuplicateEntry.
func (s *Service) AddReminder(ctx context.Context, in NewReminder) (domain.Reminder, error) {
	r, err := domain.NewManualReminder(in.Title, in.Comment, in.Date, in.Start, in.End)
	if err != nil {
		return domain.Reminder{}, err
	}

	if err := s.mutate(func() error { return s.reminders.Add(r) }); err != nil {
		return domain.Reminder{}, err
	}

	s.emit(ctx, events.ReminderAdded, r)
	return r, nil
}

// DeleteReminder removes the reminder with the given ID, whatever its origin.
func (s *Service) DeleteReminder(ctx context.Context, id uuid.UUID) (domain.Reminder, error) {
	var removed domain.Reminder
	err := s.mutate(func() error {
		var ok bool
		removed, ok = s.reminders.Delete(id)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrReminderNotFound, id)
		}
		return nil
	})
	if err != nil {
		return domain.Reminder{}, err
	}

	s.emit(ctx, events.ReminderDeleted, removed)
	return removed, nil
}

// ListReminders returns the reminders dated d, ordered by start time.
func (s *Service) ListReminders(d civil.Date) (list []domain.Reminder) {
	s.read(func() { list = s.reminders.ListByDate(d) })
	return list
}

// Reminders returns every reminder in chronological order.
func (s *Service) Reminders() (list []domain.Reminder) {
	s.read(func() { list = s.reminders.Reminders() })
	return list
}

// Reminder returns the reminder with the given ID.
func (s *Service) Reminder(id uuid.UUID) (r domain.Reminder, ok bool) {
	s.read(func() { r, ok = s.reminders.Get(id) })
	return r, ok
}

// ReminderForAppointment returns the reminder mirroring the given appointment.
func (s *Service) ReminderForAppointment(id uuid.UUID) (r domain.Reminder, ok bool) {
	s.read(func() { r, ok = s.reminders.ForAppointment(id) })
	return r, ok
}

// ReminderForMedicine returns the low-stock reminder of the given medicine.
func (s *Service) ReminderForMedicine(id uuid.UUID) (r domain.Reminder, ok bool) {
	s.read(func() { r, ok = s.reminders.ForMedicine(id) })
	return r, ok
}
