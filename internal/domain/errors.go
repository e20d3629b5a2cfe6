package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the managers and the facade.
var (
	// ErrValidation is returned when a domain value fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrPathNotFound is returned when a directory path segment does not resolve.
	ErrPathNotFound = errors.New("path not found")

	// ErrDuplicateEntry is returned on a name collision among siblings, or when
	// a bulk load contains the same medicine, appointment or record twice.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidQuantity is returned for negative or otherwise nonsensical quantities
	// and thresholds.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidAmount is returned for negative prices, costs and fees.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAppointmentConflict is returned when an appointment overlaps an existing one.
	ErrAppointmentConflict = errors.New("appointment conflicts with an existing appointment")

	// ErrInvalidDateRange is returned when a range starts after it ends.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidTimeRange is returned when an interval does not start before it ends.
	ErrInvalidTimeRange = errors.New("start time must be before end time")

	// ErrInsufficientStock is returned when a dispense would take a quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotFound is returned by commands that expect an existing target.
	// Queries report a miss with a boolean instead.
	ErrNotFound = errors.New("not found")

	// Entity-specific "not found" errors

	// ErrMedicineNotFound indicates that the medicine to mutate does not exist.
	ErrMedicineNotFound = fmt.Errorf("%w: medicine", ErrNotFound)

	// ErrAppointmentNotFound indicates that the appointment to mutate does not exist.
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment", ErrNotFound)

	// ErrReminderNotFound indicates that the reminder to mutate does not exist.
	ErrReminderNotFound = fmt.Errorf("%w: reminder", ErrNotFound)
)

// ValidationError describes a single invalid field. It wraps a sentinel error
// so callers can keep using errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil, ErrValidation is wrapped.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}
