package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordKind classifies ledger records.
type RecordKind string

// Possible record kinds
const (
	RecordConsultation     RecordKind = "consultation"
	RecordMedicinePurchase RecordKind = "medicine_purchase"
)

// Record is an immutable, timestamped financial or consultation event.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	Kind        RecordKind      `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity,omitempty"` // purchased units
	Patient     *Patient        `json:"patient,omitempty"`  // consulted patient
}

// Validate checks the record's fields. Used when records are replayed from storage.
func (r Record) Validate() error {
	if r.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", nil)
	}
	switch r.Kind {
	case RecordConsultation, RecordMedicinePurchase:
	default:
		return NewValidationError("kind", "is not a known record kind", nil)
	}
	if r.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if r.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if r.Timestamp.IsZero() {
		return NewValidationError("timestamp", "cannot be zero", nil)
	}
	return nil
}

// MonthlySummary aggregates the records of a single month.
type MonthlySummary struct {
	Month               Month           `json:"month"`
	ConsultationCount   int             `json:"consultation_count"`
	ConsultationRevenue decimal.Decimal `json:"consultation_revenue"`
	PurchaseCount       int             `json:"purchase_count"`
	PurchaseCost        decimal.Decimal `json:"purchase_cost"`
}

// Statistics is derived on demand from records in an inclusive month range.
// It is never stored.
type Statistics struct {
	From                Month            `json:"from"`
	To                  Month            `json:"to"`
	ConsultationCount   int              `json:"consultation_count"`
	ConsultationRevenue decimal.Decimal  `json:"consultation_revenue"`
	PurchaseCount       int              `json:"purchase_count"`
	PurchaseQuantity    int              `json:"purchase_quantity"`
	PurchaseCost        decimal.Decimal  `json:"purchase_cost"`
	Total               decimal.Decimal  `json:"total"`  // sum of every record amount
	Profit              decimal.Decimal  `json:"profit"` // revenue minus purchase cost
	Months              []MonthlySummary `json:"months"`
}
