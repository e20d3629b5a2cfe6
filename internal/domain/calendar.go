package domain

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Clock is the injectable time source used wherever the domain stamps a
// timestamp or needs "today".
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts an ordinary function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in the given location.
type SystemClock struct {
	Location *time.Location
}

// Now implements Clock.
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant. Useful for deterministic tests.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Month identifies a calendar month, the granularity of statistics ranges.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOfDate returns the month containing d.
func MonthOfDate(d civil.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// ParseMonth parses a month in "2006-01" form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q", ErrValidation, s)
	}
	return MonthOf(t), nil
}

// String returns the month in "2006-01" form.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsValid reports whether the month number is in range.
func (m Month) IsValid() bool {
	return m.Month >= time.January && m.Month <= time.December
}

func (m Month) index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool { return m.index() < o.index() }

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool { return m.index() > o.index() }

// MonthsUntil returns how many months o lies after m; negative when o is earlier.
func (m Month) MonthsUntil(o Month) int { return o.index() - m.index() }

// Next returns the following month.
func (m Month) Next() Month {
	i := m.index() + 1
	return Month{Year: i / 12, Month: time.Month(i%12 + 1)}
}

// InRange reports whether m lies within [from, to] inclusive.
func (m Month) InRange(from, to Month) bool {
	return !m.Before(from) && !m.After(to)
}

// compareTimes orders two times of day.
func compareTimes(a, b civil.Time) int {
	ka, kb := timeKey(a), timeKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}

func timeKey(t civil.Time) int64 {
	return int64(t.Hour)*int64(time.Hour) +
		int64(t.Minute)*int64(time.Minute) +
		int64(t.Second)*int64(time.Second) +
		int64(t.Nanosecond)
}

// TimeBefore reports whether a is strictly earlier than b.
func TimeBefore(a, b civil.Time) bool { return compareTimes(a, b) < 0 }

// CompareDateTime orders (date, time) pairs chronologically.
func CompareDateTime(d1 civil.Date, t1 civil.Time, d2 civil.Date, t2 civil.Time) int {
	switch {
	case d1.Before(d2):
		return -1
	case d1.After(d2):
		return 1
	default:
		return compareTimes(t1, t2)
	}
}

// DateInRange reports whether d lies within [from, to] inclusive.
func DateInRange(d, from, to civil.Date) bool {
	return !d.Before(from) && !d.After(to)
}
