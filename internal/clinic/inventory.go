package clinic

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/domain/inventory"
	"github.com/phrazzld/clinicdesk/internal/domain/ledger"
	"github.com/phrazzld/clinicdesk/internal/domain/reminder"
	"github.com/phrazzld/clinicdesk/internal/events"
	"github.com/shopspring/decimal"
)

// AddDirectory creates an empty directory called name under path.
func (s *Service) AddDirectory(ctx context.Context, name string, path []string) (domain.Directory, error) {
	var dir domain.Directory
	err := s.mutate(func() error {
		var err error
		dir, err = s.inventory.AddDirectory(name, path)
		return err
	})
	if err != nil {
		return domain.Directory{}, err
	}

	s.emit(ctx, events.DirectoryAdded, dir)
	return dir, nil
}

// AddMedicine inserts a medicine and creates its low-stock reminder if it
// starts at or below its inherited threshold.
func (s *Service) AddMedicine(ctx context.Context, m inventory.NewMedicine) (MedicineResult, error) {
	var res MedicineResult
	err := s.mutate(func() error {
		med, err := s.inventory.AddMedicine(m)
		if err != nil {
			return err
		}
		res = MedicineResult{Medicine: med, Reminder: s.reminders.ReminderForMedicine(med)}
		return nil
	})
	if err != nil {
		return MedicineResult{}, err
	}

	s.emit(ctx, events.MedicineAdded, res)
	return res, nil
}

// PurchaseMedicine adds quantity units to the referenced medicine, refreshes
// its low-stock reminder and records the purchase at cost in total. Quantity
// and cost are checked before anything changes.
func (s *Service) PurchaseMedicine(ctx context.Context, ref MedicineRef, quantity int, cost decimal.Decimal) (StockResult, error) {
	if err := ledger.ValidatePurchase(quantity, cost); err != nil {
		return StockResult{}, err
	}

	var res StockResult
	err := s.mutate(func() error {
		var (
			med domain.Medicine
			err error
		)
		if len(ref.Path) > 0 {
			med, err = s.inventory.PurchaseByPath(ref.Path, quantity)
		} else {
			med, err = s.inventory.PurchaseByName(ref.Name, quantity)
		}
		if err != nil {
			return err
		}
		change := s.reminders.ReminderForMedicine(med)
		record, err := s.ledger.RecordPurchase(med.Name, quantity, cost)
		if err != nil {
			return err
		}
		res = StockResult{Medicine: med, Quantity: quantity, Reminder: change, Record: &record}
		return nil
	})
	if err != nil {
		return StockResult{}, err
	}

	s.emit(ctx, events.MedicinePurchased, res)
	return res, nil
}

// DispenseMedicine removes quantity units from the referenced medicine and
// refreshes its low-stock reminder.
func (s *Service) DispenseMedicine(ctx context.Context, ref MedicineRef, quantity int) (StockResult, error) {
	var res StockResult
	err := s.mutate(func() error {
		var (
			med domain.Medicine
			err error
		)
		if len(ref.Path) > 0 {
			med, err = s.inventory.DispenseByPath(ref.Path, quantity)
		} else {
			med, err = s.inventory.DispenseByName(ref.Name, quantity)
		}
		if err != nil {
			return err
		}
		res = StockResult{Medicine: med, Quantity: quantity, Reminder: s.reminders.ReminderForMedicine(med)}
		return nil
	})
	if err != nil {
		return StockResult{}, err
	}

	s.emit(ctx, events.MedicineDispensed, res)
	return res, nil
}

// SetDirectoryThreshold overwrites the threshold of the directory at path and
// everything below it, then re-evaluates each affected medicine's reminder.
func (s *Service) SetDirectoryThreshold(ctx context.Context, path []string, value int) (ThresholdResult, error) {
	var res ThresholdResult
	err := s.mutate(func() error {
		meds, err := s.inventory.SetDirectoryThreshold(path, value)
		if err != nil {
			return err
		}
		dir, _ := s.inventory.FindDirectory(path)
		res = ThresholdResult{Directory: dir, Medicines: meds, Reminders: []reminder.Change{}}
		for _, m := range meds {
			if change := s.reminders.ReminderForMedicine(m); change.Changed() {
				res.Reminders = append(res.Reminders, change)
			}
		}
		return nil
	})
	if err != nil {
		return ThresholdResult{}, err
	}

	s.emit(ctx, events.ThresholdChanged, res)
	return res, nil
}

// SetMedicineThreshold overrides one medicine's threshold and re-evaluates its reminder.
func (s *Service) SetMedicineThreshold(ctx context.Context, path []string, value int) (MedicineResult, error) {
	var res MedicineResult
	err := s.mutate(func() error {
		med, err := s.inventory.SetMedicineThreshold(path, value)
		if err != nil {
			return err
		}
		res = MedicineResult{Medicine: med, Reminder: s.reminders.ReminderForMedicine(med)}
		return nil
	})
	if err != nil {
		return MedicineResult{}, err
	}

	s.emit(ctx, events.ThresholdChanged, res)
	return res, nil
}

// SetPrice changes the unit price of the medicine at path.
func (s *Service) SetPrice(ctx context.Context, path []string, price decimal.Decimal) (domain.Medicine, error) {
	var med domain.Medicine
	err := s.mutate(func() error {
		var err error
		med, err = s.inventory.SetPrice(path, price)
		return err
	})
	if err != nil {
		return domain.Medicine{}, err
	}

	s.emit(ctx, events.PriceChanged, med)
	return med, nil
}

// FindMedicine returns the first medicine called name.
func (s *Service) FindMedicine(name string) (med domain.Medicine, ok bool) {
	s.read(func() { med, ok = s.inventory.FindMedicine(name) })
	return med, ok
}

// FindMedicineByPath returns the medicine at the given full path.
func (s *Service) FindMedicineByPath(path []string) (med domain.Medicine, ok bool) {
	s.read(func() { med, ok = s.inventory.FindMedicineByPath(path) })
	return med, ok
}

// FindMedicineByID returns the medicine with the given ID.
func (s *Service) FindMedicineByID(id uuid.UUID) (med domain.Medicine, ok bool) {
	s.read(func() { med, ok = s.inventory.FindMedicineByID(id) })
	return med, ok
}

// FindDirectory returns the directory at path.
func (s *Service) FindDirectory(path []string) (dir domain.Directory, ok bool) {
	s.read(func() { dir, ok = s.inventory.FindDirectory(path) })
	return dir, ok
}

// Directories lists every directory in pre-order.
func (s *Service) Directories() (dirs []domain.Directory) {
	s.read(func() { dirs = s.inventory.Directories() })
	return dirs
}

// Medicines lists every medicine in pre-order.
func (s *Service) Medicines() (meds []domain.Medicine) {
	s.read(func() { meds = s.inventory.Medicines() })
	return meds
}
