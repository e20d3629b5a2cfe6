package api

import (
	"github.com/phrazzld/clinicdesk/internal/clinic"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// PatientRequest identifies a patient.
type PatientRequest struct {
	NRIC string `json:"nric" validate:"required"`
	Name string `json:"name" validate:"required"`
}

func (p PatientRequest) toDomain() domain.Patient {
	return domain.Patient{NRIC: p.NRIC, Name: p.Name}
}

// CreateDirectoryRequest is the body of POST /api/inventory/directories.
type CreateDirectoryRequest struct {
	Name string   `json:"name" validate:"required"`
	Path []string `json:"path" validate:"required,min=1"`
}

// CreateMedicineRequest is the body of POST /api/inventory/medicines.
type CreateMedicineRequest struct {
	Name     string          `json:"name" validate:"required"`
	Path     []string        `json:"path" validate:"required,min=1"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price"`
}

// MedicineRefRequest selects a medicine by full path or by name.
type MedicineRefRequest struct {
	Path []string `json:"path,omitempty"`
	Name string   `json:"name,omitempty"`
}

// Validate requires exactly one of path and name.
func (m MedicineRefRequest) Validate() error {
	if (len(m.Path) == 0) == (m.Name == "") {
		return domain.NewValidationError("medicine", "needs exactly one of path or name", nil)
	}
	return nil
}

func (m MedicineRefRequest) toRef() clinic.MedicineRef {
	if len(m.Path) > 0 {
		return clinic.ByPath(m.Path...)
	}
	return clinic.ByName(m.Name)
}

// PurchaseRequest is the body of POST /api/inventory/medicines/purchase.
type PurchaseRequest struct {
	MedicineRefRequest
	Quantity int              `json:"quantity" validate:"gt=0"`
	Cost     *decimal.Decimal `json:"cost" validate:"required"`
}

// DispenseRequest is the body of POST /api/inventory/medicines/dispense.
type DispenseRequest struct {
	MedicineRefRequest
	Quantity int `json:"quantity" validate:"gt=0"`
}

// ThresholdRequest sets a directory or medicine threshold.
type ThresholdRequest struct {
	Path      []string `json:"path" validate:"required,min=1"`
	Threshold *int     `json:"threshold" validate:"required,gte=0"`
}

// PriceRequest is the body of PUT /api/inventory/medicines/price.
type PriceRequest struct {
	Path  []string         `json:"path" validate:"required,min=2"`
	Price *decimal.Decimal `json:"price" validate:"required"`
}

// CreateAppointmentRequest is the body of POST /api/appointments. Times are
// given as HH:MM or HH:MM:SS.
type CreateAppointmentRequest struct {
	Patient PatientRequest `json:"patient"`
	Date    string         `json:"date" validate:"required"`
	Start   string         `json:"start" validate:"required"`
	End     string         `json:"end" validate:"required"`
	Comment string         `json:"comment"`
}

// CreateReminderRequest is the body of POST /api/reminders.
type CreateReminderRequest struct {
	Title   string `json:"title" validate:"required"`
	Comment string `json:"comment"`
	Date    string `json:"date" validate:"required"`
	Start   string `json:"start" validate:"required"`
	End     string `json:"end"`
}

// ConsultationRequest is the body of POST /api/consultations.
type ConsultationRequest struct {
	Patient PatientRequest `json:"patient"`
}

// FeeRequest is the body of PUT /api/consultation-fee.
type FeeRequest struct {
	Fee *decimal.Decimal `json:"fee" validate:"required"`
}

// FeeResponse reports the consultation fee.
type FeeResponse struct {
	Fee decimal.Decimal `json:"fee"`
}
