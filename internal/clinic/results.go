package clinic

import (
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/domain/reminder"
	"github.com/shopspring/decimal"
)

// MedicineRef selects a medicine either by its full path (directories then
// medicine name) or, when Path is empty, by the first medicine called Name.
type MedicineRef struct {
	Path []string `json:"path,omitempty"`
	Name string   `json:"name,omitempty"`
}

// ByPath refers to the medicine at the given full path.
func ByPath(path ...string) MedicineRef {
	return MedicineRef{Path: path}
}

// ByName refers to the first medicine called name in a pre-order walk.
func ByName(name string) MedicineRef {
	return MedicineRef{Name: name}
}

// StockResult describes a purchase or dispense.
type StockResult struct {
	Medicine domain.Medicine `json:"medicine"`
	Quantity int             `json:"quantity"`
	Reminder reminder.Change `json:"reminder"`
	Record   *domain.Record  `json:"record,omitempty"` // set for purchases
}

// MedicineResult describes a change to a single medicine.
type MedicineResult struct {
	Medicine domain.Medicine `json:"medicine"`
	Reminder reminder.Change `json:"reminder"`
}

// ThresholdResult describes a directory threshold change. Reminders lists only
// the medicines whose reminder was created or removed.
type ThresholdResult struct {
	Directory domain.Directory  `json:"directory"`
	Medicines []domain.Medicine `json:"medicines"`
	Reminders []reminder.Change `json:"reminders"`
}

// AppointmentResult describes an added or deleted appointment together with
// its mirrored reminder.
type AppointmentResult struct {
	Appointment domain.Appointment `json:"appointment"`
	Reminder    domain.Reminder    `json:"reminder"`
}

// FeeResult describes a consultation fee change.
type FeeResult struct {
	Previous decimal.Decimal `json:"previous"`
	Current  decimal.Decimal `json:"current"`
}

// RestoreResult summarises a restore.
type RestoreResult struct {
	Directories  int `json:"directories"`
	Medicines    int `json:"medicines"`
	Appointments int `json:"appointments"`
	Reminders    int `json:"reminders"`
	Records      int `json:"records"`
	Repaired     int `json:"repaired"`
	Skipped      int `json:"skipped"`
}
