package domain

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Patient is the already-validated patient reference handed to the core.
// Identity and display fields are checked by the caller.
type Patient struct {
	NRIC string `json:"nric"`
	Name string `json:"name"`
}

// Appointment is a booked interval [Start, End) on a single date.
type Appointment struct {
	ID      uuid.UUID  `json:"id"`
	Patient Patient    `json:"patient"`
	Date    civil.Date `json:"date"`
	Start   civil.Time `json:"start"`
	End     civil.Time `json:"end"`
	Comment string     `json:"comment"`
}

// NewAppointment creates a validated appointment with a fresh ID.
func NewAppointment(patient Patient, date civil.Date, start, end civil.Time, comment string) (Appointment, error) {
	a := Appointment{
		ID:      uuid.New(),
		Patient: patient,
		Date:    date,
		Start:   start,
		End:     end,
		Comment: comment,
	}
	if err := a.Validate(); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Validate checks the appointment's structural invariants.
func (a Appointment) Validate() error {
	if a.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", nil)
	}
	if strings.TrimSpace(a.Patient.NRIC) == "" {
		return NewValidationError("patient", "cannot be empty", nil)
	}
	if !a.Date.IsValid() {
		return NewValidationError("date", "is not a valid date", nil)
	}
	if !a.Start.IsValid() || !a.End.IsValid() {
		return NewValidationError("time", "is not a valid time of day", nil)
	}
	if !TimeBefore(a.Start, a.End) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Overlaps reports whether two appointments share a date and their half-open
// intervals intersect. Touching endpoints do not overlap.
func (a Appointment) Overlaps(b Appointment) bool {
	if a.Date != b.Date {
		return false
	}
	return TimeBefore(a.Start, b.End) && TimeBefore(b.Start, a.End)
}

// SameBooking reports whether two appointments describe the same booking,
// ignoring their IDs.
func (a Appointment) SameBooking(b Appointment) bool {
	return a.Patient == b.Patient &&
		a.Date == b.Date &&
		a.Start == b.Start &&
		a.End == b.End &&
		a.Comment == b.Comment
}

// Title is the headline used for the appointment's mirrored reminder.
func (a Appointment) Title() string {
	return fmt.Sprintf("Appointment with %s (%s)", a.Patient.Name, a.Patient.NRIC)
}

// CompareAppointments orders appointments by date, then start time.
func CompareAppointments(a, b Appointment) int {
	return CompareDateTime(a.Date, a.Start, b.Date, b.Start)
}
