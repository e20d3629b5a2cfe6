package reminder

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	today    = civil.Date{Year: 2024, Month: 5, Day: 10}
	tomorrow = today.AddDays(1)
	now      = time.Date(2024, 5, 10, 15, 4, 5, 0, time.UTC)
)

func newEngine() *Engine {
	return NewEngine(domain.FixedClock(now))
}

func medicine(quantity, threshold int) domain.Medicine {
	return domain.Medicine{
		ID:        uuid.New(),
		Name:      "paracetamol",
		Path:      []string{"root", "painkillers"},
		Quantity:  quantity,
		Threshold: threshold,
	}
}

func appointment(t *testing.T, date civil.Date, startHour int) domain.Appointment {
	t.Helper()
	a, err := domain.NewAppointment(
		domain.Patient{NRIC: "S1234567A", Name: "Alice"},
		date,
		civil.Time{Hour: startHour},
		civil.Time{Hour: startHour, Minute: 30},
		"follow-up",
	)
	require.NoError(t, err)
	return a
}

func TestReminderForMedicine(t *testing.T) {
	t.Parallel()

	t.Run("creates reminder at threshold", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		m := medicine(10, 10)

		change := e.ReminderForMedicine(m)
		require.Equal(t, ChangeCreated, change.Kind)
		assert.True(t, change.Changed())
		assert.Equal(t, today, change.Reminder.Date)
		assert.Equal(t, domain.OriginMedicineThreshold, change.Reminder.Origin)
		assert.Equal(t, m.ID, change.Reminder.SourceID)
		assert.Contains(t, change.Reminder.Title, "paracetamol")

		got, ok := e.ForMedicine(m.ID)
		require.True(t, ok)
		assert.Equal(t, change.Reminder, got)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		m := medicine(3, 10)

		require.Equal(t, ChangeCreated, e.ReminderForMedicine(m).Kind)
		assert.Equal(t, ChangeUnchanged, e.ReminderForMedicine(m).Kind)
		assert.Len(t, e.Reminders(), 1)
	})

	t.Run("removes reminder once restocked", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		m := medicine(3, 10)
		created := e.ReminderForMedicine(m)

		m.Quantity = 11
		change := e.ReminderForMedicine(m)
		assert.Equal(t, ChangeRemoved, change.Kind)
		assert.Equal(t, created.Reminder.ID, change.Reminder.ID)

		_, ok := e.ForMedicine(m.ID)
		assert.False(t, ok)
		assert.Equal(t, ChangeUnchanged, e.ReminderForMedicine(m).Kind)
	})

	t.Run("above threshold creates nothing", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		assert.Equal(t, ChangeUnchanged, e.ReminderForMedicine(medicine(11, 10)).Kind)
		assert.Empty(t, e.Reminders())
	})
}

func TestDeleteExistingMedicineReminder(t *testing.T) {
	t.Parallel()

	e := newEngine()
	m := medicine(0, 5)
	e.ReminderForMedicine(m)

	_, ok := e.DeleteExistingMedicineReminder(m.ID)
	assert.True(t, ok)
	_, ok = e.DeleteExistingMedicineReminder(m.ID)
	assert.False(t, ok)
}

func TestAppointmentReminders(t *testing.T) {
	t.Parallel()

	t.Run("mirrors the appointment", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		a := appointment(t, tomorrow, 9)

		r, err := e.AddForAppointment(a)
		require.NoError(t, err)
		assert.Equal(t, a.Title(), r.Title)
		assert.Equal(t, a.Comment, r.Comment)
		assert.Equal(t, a.Date, r.Date)
		assert.Equal(t, a.Start, r.Start)
		assert.Equal(t, a.End, r.End)
		assert.Equal(t, a.ID, r.SourceID)

		got, ok := e.ForAppointment(a.ID)
		require.True(t, ok)
		assert.Equal(t, r, got)
	})

	t.Run("one per appointment", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		a := appointment(t, tomorrow, 9)

		_, err := e.AddForAppointment(a)
		require.NoError(t, err)
		_, err = e.AddForAppointment(a)
		assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
	})

	t.Run("manual reminder with the same content does not block it", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		a := appointment(t, tomorrow, 9)
		manual, err := domain.NewManualReminder(a.Title(), a.Comment, a.Date, a.Start, a.End)
		require.NoError(t, err)
		require.NoError(t, e.Add(manual))

		r, err := e.AddForAppointment(a)
		require.NoError(t, err)
		assert.Equal(t, a.ID, r.SourceID)
		assert.Len(t, e.ListByDate(tomorrow), 2)
	})

	t.Run("delete by appointment", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		a := appointment(t, tomorrow, 9)
		r, err := e.AddForAppointment(a)
		require.NoError(t, err)

		removed, ok := e.DeleteByAppointment(a.ID)
		require.True(t, ok)
		assert.Equal(t, r.ID, removed.ID)

		_, ok = e.ForAppointment(a.ID)
		assert.False(t, ok)
		_, ok = e.DeleteByAppointment(a.ID)
		assert.False(t, ok)
	})
}

func TestManualReminders(t *testing.T) {
	t.Parallel()

	t.Run("rejects duplicate content", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		r, err := domain.NewManualReminder("Call supplier", "", today, civil.Time{Hour: 10}, civil.Time{Hour: 10})
		require.NoError(t, err)
		require.NoError(t, e.Add(r))

		again, err := domain.NewManualReminder("Call supplier", "", today, civil.Time{Hour: 10}, civil.Time{Hour: 10})
		require.NoError(t, err)
		assert.True(t, e.HasDuplicate(again))
		assert.ErrorIs(t, e.Add(again), domain.ErrDuplicateEntry)
	})

	t.Run("rejects invalid reminder", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		err := e.Add(domain.Reminder{ID: uuid.New(), Date: today, Origin: domain.OriginManual})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("delete by id", func(t *testing.T) {
		t.Parallel()
		e := newEngine()
		r, err := domain.NewManualReminder("Order gloves", "", today, civil.Time{Hour: 8}, civil.Time{Hour: 9})
		require.NoError(t, err)
		require.NoError(t, e.Add(r))

		_, ok := e.Delete(r.ID)
		assert.True(t, ok)
		_, ok = e.Get(r.ID)
		assert.False(t, ok)
		_, ok = e.Delete(r.ID)
		assert.False(t, ok)
	})
}

func TestListByDate(t *testing.T) {
	t.Parallel()

	e := newEngine()
	late := appointment(t, today, 16)
	early := appointment(t, today, 9)
	other := appointment(t, tomorrow, 9)
	for _, a := range []domain.Appointment{late, early, other} {
		_, err := e.AddForAppointment(a)
		require.NoError(t, err)
	}
	e.ReminderForMedicine(medicine(0, 1))

	got := e.ListByDate(today)
	require.Len(t, got, 3)
	assert.Equal(t, domain.OriginMedicineThreshold, got[0].Origin)
	assert.Equal(t, early.ID, got[1].SourceID)
	assert.Equal(t, late.ID, got[2].SourceID)

	assert.Len(t, e.ListByDate(tomorrow), 1)
	assert.Empty(t, e.ListByDate(tomorrow.AddDays(1)))
}
