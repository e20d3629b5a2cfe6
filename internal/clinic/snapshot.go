package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/domain/inventory"
	"github.com/phrazzld/clinicdesk/internal/events"
	"github.com/phrazzld/clinicdesk/internal/store"
)

// Snapshot captures the complete state under one read lock.
func (s *Service) Snapshot() *store.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &store.Snapshot{
		Version:         store.SnapshotVersion,
		SavedAt:         s.clock.Now(),
		ConsultationFee: s.ledger.ConsultationFee(),
		Directories:     s.inventory.Directories(),
		Medicines:       s.inventory.Medicines(),
		Appointments:    s.schedule.Appointments(),
		Reminders:       s.reminders.Reminders(),
		Records:         s.ledger.Records(),
	}
}

// Restore replaces the current state with snap. Entries that cannot be loaded
// are skipped; their errors are joined into the returned error while every
// other entry is still restored. A reminder whose appointment or medicine is
// not part of the restored state is skipped. Afterwards every appointment
// without a reminder gets one and low-stock reminders are re-evaluated
// against the restored stock; both count as repairs.
func (s *Service) Restore(ctx context.Context, snap *store.Snapshot) (RestoreResult, error) {
	if snap == nil {
		return RestoreResult{}, fmt.Errorf("%w: nil snapshot", store.ErrInvalidEntity)
	}
	if snap.Version > store.SnapshotVersion {
		return RestoreResult{}, fmt.Errorf("%w: snapshot version %d is newer than %d",
			store.ErrInvalidEntity, snap.Version, store.SnapshotVersion)
	}

	var (
		res  RestoreResult
		errs []error
	)
	err := s.mutate(func() error {
		if err := s.reset(); err != nil {
			return err
		}
		skip := func(err error) {
			res.Skipped++
			errs = append(errs, err)
		}

		if err := s.ledger.SetConsultationFee(snap.ConsultationFee); err != nil {
			skip(fmt.Errorf("consultation fee: %w", err))
		}
		for _, d := range snap.Directories {
			if err := s.restoreDirectory(d); err != nil {
				skip(fmt.Errorf("directory %s: %w", strings.Join(d.Path, "/"), err))
				continue
			}
			res.Directories++
		}
		for _, m := range snap.Medicines {
			if err := s.restoreMedicine(m); err != nil {
				skip(fmt.Errorf("medicine %s: %w", strings.Join(m.FullPath(), "/"), err))
				continue
			}
			res.Medicines++
		}
		for _, a := range snap.Appointments {
			if err := s.schedule.Add(a); err != nil {
				skip(fmt.Errorf("appointment %s: %w", a.ID, err))
				continue
			}
			res.Appointments++
		}
		for _, r := range snap.Reminders {
			if err := s.restoreReminder(r); err != nil {
				skip(fmt.Errorf("reminder %s: %w", r.ID, err))
				continue
			}
			res.Reminders++
		}
		loadErrs := s.ledger.Load(snap.Records)
		res.Records = len(snap.Records) - len(loadErrs)
		for _, err := range loadErrs {
			skip(err)
		}

		for _, a := range s.schedule.Appointments() {
			if _, ok := s.reminders.ForAppointment(a.ID); ok {
				continue
			}
			if _, err := s.reminders.AddForAppointment(a); err != nil {
				skip(fmt.Errorf("reminder for appointment %s: %w", a.ID, err))
				continue
			}
			res.Repaired++
		}
		for _, m := range s.inventory.Medicines() {
			if s.reminders.ReminderForMedicine(m).Changed() {
				res.Repaired++
			}
		}
		return nil
	})
	if err != nil {
		return RestoreResult{}, err
	}

	s.logger.Info("state restored",
		"directories", res.Directories,
		"medicines", res.Medicines,
		"appointments", res.Appointments,
		"reminders", res.Reminders,
		"records", res.Records,
		"repaired", res.Repaired,
		"skipped", res.Skipped)
	s.emit(ctx, events.StateRestored, res)
	return res, errors.Join(errs...)
}

// restoreDirectory recreates one directory. Parents precede children in a
// snapshot, so the parent already exists.
func (s *Service) restoreDirectory(d domain.Directory) error {
	if len(d.Path) > 1 {
		if _, err := s.inventory.AddDirectory(d.Name(), d.ParentPath()); err != nil {
			return err
		}
	}
	return s.inventory.SetDirectoryOwnThreshold(d.Path, d.Threshold)
}

func (s *Service) restoreMedicine(m domain.Medicine) error {
	if _, err := s.inventory.AddMedicine(inventory.NewMedicine{
		ID:       m.ID,
		Name:     m.Name,
		Quantity: m.Quantity,
		Path:     m.Path,
		Price:    m.Price,
	}); err != nil {
		return err
	}
	_, err := s.inventory.SetMedicineThreshold(m.FullPath(), m.Threshold)
	return err
}

// restoreReminder adds r if the appointment or medicine it mirrors exists.
func (s *Service) restoreReminder(r domain.Reminder) error {
	switch r.Origin {
	case domain.OriginAppointment:
		if _, ok := s.schedule.GetByID(r.SourceID); !ok {
			return fmt.Errorf("%w %s", domain.ErrAppointmentNotFound, r.SourceID)
		}
	case domain.OriginMedicineThreshold:
		if _, ok := s.inventory.FindMedicineByID(r.SourceID); !ok {
			return fmt.Errorf("%w %s", domain.ErrMedicineNotFound, r.SourceID)
		}
	}
	return s.reminders.Add(r)
}
