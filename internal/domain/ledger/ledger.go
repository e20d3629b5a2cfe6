// Package ledger records consultations and medicine purchases and derives
// statistics from them.
package ledger

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// Ledger is an append-only list of records plus the current consultation fee.
// It is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	clock   domain.Clock
	fee     decimal.Decimal
	records []domain.Record
}

// New creates an empty ledger charging fee per consultation.
func New(fee decimal.Decimal, clock domain.Clock) (*Ledger, error) {
	if fee.IsNegative() {
		return nil, fmt.Errorf("%w: consultation fee %s", domain.ErrInvalidAmount, fee)
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Ledger{clock: clock, fee: fee}, nil
}

// SetConsultationFee changes the fee stamped on future consultations.
// Existing records keep the fee they were recorded with.
func (l *Ledger) SetConsultationFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return fmt.Errorf("%w: consultation fee %s", domain.ErrInvalidAmount, fee)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.fee = fee
	return nil
}

// ConsultationFee returns the current fee.
func (l *Ledger) ConsultationFee() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.fee
}

// RecordConsultation appends a consultation charged at the current fee.
func (l *Ledger) RecordConsultation(patient domain.Patient) (domain.Record, error) {
	if strings.TrimSpace(patient.NRIC) == "" {
		return domain.Record{}, domain.NewValidationError("patient", "cannot be empty", nil)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := patient
	r := domain.Record{
		ID:          uuid.New(),
		Kind:        domain.RecordConsultation,
		Amount:      l.fee,
		Timestamp:   l.clock.Now(),
		Description: fmt.Sprintf("Consultation with %s (%s)", patient.Name, patient.NRIC),
		Patient:     &p,
	}
	l.records = append(l.records, r)
	return r, nil
}

// ValidatePurchase checks the arguments of RecordPurchase without recording anything.
func ValidatePurchase(quantity int, cost decimal.Decimal) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidQuantity, quantity)
	}
	if cost.IsNegative() {
		return fmt.Errorf("%w: cost %s", domain.ErrInvalidAmount, cost)
	}
	return nil
}

// RecordPurchase appends a purchase of quantity units of medicine for cost in total.
func (l *Ledger) RecordPurchase(medicine string, quantity int, cost decimal.Decimal) (domain.Record, error) {
	if err := ValidatePurchase(quantity, cost); err != nil {
		return domain.Record{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r := domain.Record{
		ID:          uuid.New(),
		Kind:        domain.RecordMedicinePurchase,
		Amount:      cost,
		Timestamp:   l.clock.Now(),
		Description: fmt.Sprintf("Purchased %d x %s", quantity, medicine),
		Quantity:    quantity,
	}
	l.records = append(l.records, r)
	return r, nil
}

// Records returns every record in insertion order.
func (l *Ledger) Records() []domain.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.records)
}

// Load appends previously stored records. A record that fails validation or
// repeats an ID already present is skipped and reported; the rest are kept.
func (l *Ledger) Load(records []domain.Record) []error {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[uuid.UUID]struct{}, len(l.records)+len(records))
	for _, r := range l.records {
		seen[r.ID] = struct{}{}
	}

	var errs []error
	for _, r := range records {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", r.ID, err))
			continue
		}
		if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: record %s", domain.ErrDuplicateEntry, r.ID))
			continue
		}
		seen[r.ID] = struct{}{}
		l.records = append(l.records, r)
	}
	return errs
}
