package domain

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// ReminderOrigin records what a reminder was derived from.
type ReminderOrigin string

// Possible reminder origins
const (
	OriginAppointment       ReminderOrigin = "appointment"
	OriginMedicineThreshold ReminderOrigin = "medicine_threshold"
	OriginManual            ReminderOrigin = "manual"
)

// Reminder is a dated note shown to the clinic. Derived reminders carry the
// ID of their source appointment or medicine in SourceID.
type Reminder struct {
	ID       uuid.UUID      `json:"id"`
	Title    string         `json:"title"`
	Comment  string         `json:"comment"`
	Date     civil.Date     `json:"date"`
	Start    civil.Time     `json:"start"`
	End      civil.Time     `json:"end"`
	Origin   ReminderOrigin `json:"origin"`
	SourceID uuid.UUID      `json:"source_id"`
}

// NewManualReminder creates a validated reminder entered directly by the clinic.
func NewManualReminder(title, comment string, date civil.Date, start, end civil.Time) (Reminder, error) {
	r := Reminder{
		ID:      uuid.New(),
		Title:   title,
		Comment: comment,
		Date:    date,
		Start:   start,
		End:     end,
		Origin:  OriginManual,
	}
	if err := r.Validate(); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// Validate checks the reminder's fields.
func (r Reminder) Validate() error {
	if r.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", nil)
	}
	if strings.TrimSpace(r.Title) == "" {
		return NewValidationError("title", "cannot be empty", nil)
	}
	if !r.Date.IsValid() {
		return NewValidationError("date", "is not a valid date", nil)
	}
	if !r.Start.IsValid() || !r.End.IsValid() {
		return NewValidationError("time", "is not a valid time of day", nil)
	}
	if TimeBefore(r.End, r.Start) {
		return ErrInvalidTimeRange
	}
	switch r.Origin {
	case OriginAppointment, OriginMedicineThreshold:
		if r.SourceID == uuid.Nil {
			return NewValidationError("source_id", "is required for derived reminders", nil)
		}
	case OriginManual:
	default:
		return NewValidationError("origin", "is not a known origin", nil)
	}
	return nil
}

// SameContent reports whether two reminders carry the same visible content.
// IDs, origin and source are ignored.
func (r Reminder) SameContent(o Reminder) bool {
	return r.Title == o.Title &&
		r.Comment == o.Comment &&
		r.Date == o.Date &&
		r.Start == o.Start &&
		r.End == o.End
}

// CompareReminders orders reminders by date, then start time.
func CompareReminders(a, b Reminder) int {
	return CompareDateTime(a.Date, a.Start, b.Date, b.Start)
}
