package schedule

import (
	"fmt"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/clinicdesk/internal/domain"
)

// Window is the clinic's daily operating window [Open, Close).
type Window struct {
	Open  civil.Time
	Close civil.Time
}

// DefaultWindow is used when no window is configured.
var DefaultWindow = Window{
	Open:  civil.Time{Hour: 9},
	Close: civil.Time{Hour: 18},
}

// Validate checks that the window opens before it closes.
func (w Window) Validate() error {
	if !w.Open.IsValid() || !w.Close.IsValid() {
		return domain.NewValidationError("operating window", "is not a valid time of day", nil)
	}
	if !domain.TimeBefore(w.Open, w.Close) {
		return fmt.Errorf("%w: operating window %s-%s", domain.ErrInvalidTimeRange, w.Open, w.Close)
	}
	return nil
}

// Slot is a half-open interval [Start, End) within a day.
type Slot struct {
	Start civil.Time `json:"start"`
	End   civil.Time `json:"end"`
}

// DaySlots lists the free slots of one date.
type DaySlots struct {
	Date  civil.Date `json:"date"`
	Slots []Slot     `json:"slots"`
}

// freeSlots returns the parts of window not covered by busy, in order.
// busy must already be sorted by start time.
func freeSlots(window Window, busy []Slot) []Slot {
	free := []Slot{}
	cursor := window.Open
	for _, b := range busy {
		if !domain.TimeBefore(cursor, window.Close) {
			break
		}
		// Skip bookings that end before the cursor or lie outside the window.
		if !domain.TimeBefore(cursor, b.End) {
			continue
		}
		if !domain.TimeBefore(b.Start, window.Close) {
			break
		}
		if domain.TimeBefore(cursor, b.Start) {
			free = append(free, Slot{Start: cursor, End: b.Start})
		}
		cursor = b.End
	}
	if domain.TimeBefore(cursor, window.Close) {
		free = append(free, Slot{Start: cursor, End: window.Close})
	}
	return free
}

// busySlots collects the sorted intervals booked on date.
func busySlots(appointments []domain.Appointment, date civil.Date) []Slot {
	var busy []Slot
	for _, a := range appointments {
		if a.Date == date {
			busy = append(busy, Slot{Start: a.Start, End: a.End})
		}
	}
	slices.SortFunc(busy, func(x, y Slot) int {
		return domain.CompareDateTime(date, x.Start, date, y.Start)
	})
	return busy
}
