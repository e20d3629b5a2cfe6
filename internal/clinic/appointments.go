package clinic

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/domain/schedule"
	"github.com/phrazzld/clinicdesk/internal/events"
)

// NewAppointment holds the caller-supplied fields of an appointment.
type NewAppointment struct {
	Patient domain.Patient
	Date    civil.Date
	Start   civil.Time
	End     civil.Time
	Comment string
}

// AddAppointment books [Start, End) on Date and creates its reminder. The
// conflict check and both inserts happen in one critical section; an
// overlapping booking yields domain.ErrAppointmentConflict.
func (s *Service) AddAppointment(ctx context.Context, in NewAppointment) (AppointmentResult, error) {
	a, err := domain.NewAppointment(in.Patient, in.Date, in.Start, in.End, in.Comment)
	if err != nil {
		return AppointmentResult{}, err
	}

	var res AppointmentResult
	err = s.mutate(func() error {
		if s.schedule.HasConflict(a) {
			return fmt.Errorf("%w: %s %s-%s", domain.ErrAppointmentConflict, a.Date, a.Start, a.End)
		}
		if err := s.schedule.Add(a); err != nil {
			return err
		}
		r, err := s.reminders.AddForAppointment(a)
		if err != nil {
			// Keep the two managers in step.
			if _, delErr := s.schedule.Delete(a.ID); delErr != nil {
				s.logger.Error("failed to undo appointment insert",
					"appointment_id", a.ID,
					"error", delErr)
			}
			return err
		}
		res = AppointmentResult{Appointment: a, Reminder: r}
		return nil
	})
	if err != nil {
		return AppointmentResult{}, err
	}

	s.emit(ctx, events.AppointmentAdded, res)
	return res, nil
}

// DeleteAppointment removes the appointment and its reminder, reminder first.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) (AppointmentResult, error) {
	var res AppointmentResult
	err := s.mutate(func() error {
		if _, ok := s.schedule.GetByID(id); !ok {
			return fmt.Errorf("%w: %s", domain.ErrAppointmentNotFound, id)
		}
		r, _ := s.reminders.DeleteByAppointment(id)
		a, err := s.schedule.Delete(id)
		if err != nil {
			return err
		}
		res = AppointmentResult{Appointment: a, Reminder: r}
		return nil
	})
	if err != nil {
		return AppointmentResult{}, err
	}

	s.emit(ctx, events.AppointmentDeleted, res)
	return res, nil
}

// Appointment returns the appointment with the given ID.
func (s *Service) Appointment(id uuid.UUID) (a domain.Appointment, ok bool) {
	s.read(func() { a, ok = s.schedule.GetByID(id) })
	return a, ok
}

// AppointmentAt returns the appointment starting at start on date.
func (s *Service) AppointmentAt(date civil.Date, start civil.Time) (a domain.Appointment, ok bool) {
	s.read(func() { a, ok = s.schedule.Get(date, start) })
	return a, ok
}

// ListAppointments returns the appointments dated within [start, end].
func (s *Service) ListAppointments(start, end civil.Date) (list []domain.Appointment, err error) {
	s.read(func() { list, err = s.schedule.ListBetween(start, end) })
	return list, err
}

// ListAppointmentsForPatient returns the patient's appointments.
func (s *Service) ListAppointmentsForPatient(p domain.Patient) (list []domain.Appointment) {
	s.read(func() { list = s.schedule.ListForPatient(p) })
	return list
}

// FreeSlots returns the unbooked parts of each day's operating window.
func (s *Service) FreeSlots(start, end civil.Date) (days []schedule.DaySlots, err error) {
	s.read(func() { days, err = s.schedule.FreeSlots(start, end) })
	return days, err
}
