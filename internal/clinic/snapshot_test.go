package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/domain/inventory"
	"github.com/phrazzld/clinicdesk/internal/events"
	"github.com/phrazzld/clinicdesk/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stockSummary flattens medicines for comparison after a JSON round trip,
// which normalises decimal scale.
func stockSummary(meds []domain.Medicine) []string {
	out := make([]string, 0, len(meds))
	for _, m := range meds {
		out = append(out, fmt.Sprintf("%s qty=%d threshold=%d price=%s",
			strings.Join(m.FullPath(), "/"), m.Quantity, m.Threshold, m.Price.StringFixed(2)))
	}
	return out
}

// populate builds a small clinic with every kind of state.
func populate(t *testing.T, f *fixture) {
	t.Helper()
	f.seedTypical(t)
	_, err := f.svc.AddDirectory(ctx, "drops", []string{"root", "test1"})
	require.NoError(t, err)
	_, err = f.svc.SetDirectoryThreshold(ctx, []string{"root", "test1"}, 3)
	require.NoError(t, err)
	_, err = f.svc.AddMedicine(ctx, inventory.NewMedicine{
		Name:     "eyedrop",
		Quantity: 10,
		Path:     []string{"root", "test1", "drops"},
		Price:    decimal.RequireFromString("4.10"),
	})
	require.NoError(t, err)
	_, err = f.svc.SetMedicineThreshold(ctx, []string{"root", "test1", "drops", "eyedrop"}, 12)
	require.NoError(t, err)
	_, err = f.svc.AddAppointment(ctx, NewAppointment{Patient: alice, Date: may10, Start: at(9, 0), End: at(9, 30), Comment: "checkup"})
	require.NoError(t, err)
	_, err = f.svc.AddReminder(ctx, NewReminder{Title: "Order gloves", Date: may10, Start: at(17, 0), End: at(17, 0)})
	require.NoError(t, err)
	_, err = f.svc.EndConsultation(ctx, alice)
	require.NoError(t, err)
	_, err = f.svc.PurchaseMedicine(ctx, ByName("eyedrop"), 5, decimal.NewFromInt(12))
	require.NoError(t, err)
	_, err = f.svc.SetConsultationFee(ctx, decimal.RequireFromString("55.5"))
	require.NoError(t, err)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	src := newFixture(t)
	populate(t, src)
	snap := src.svc.Snapshot()

	dst := newFixture(t)
	res, err := dst.svc.Restore(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, len(snap.Directories), res.Directories)
	assert.Equal(t, len(snap.Medicines), res.Medicines)

	assert.Equal(t, src.svc.Directories(), dst.svc.Directories())
	assert.Equal(t, src.svc.Medicines(), dst.svc.Medicines())
	assert.Equal(t, src.svc.Reminders(), dst.svc.Reminders())
	list, err := dst.svc.ListAppointments(may10, may10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, src.svc.Records(), dst.svc.Records())
	assert.True(t, dst.svc.ConsultationFee().Equal(decimal.RequireFromString("55.5")))

	eyedrop, ok := dst.svc.FindMedicine("eyedrop")
	require.True(t, ok)
	assert.Equal(t, 12, eyedrop.Threshold, "per-medicine override survives")
	dir, ok := dst.svc.FindDirectory([]string{"root", "test1", "drops"})
	require.True(t, ok)
	assert.Equal(t, 3, dir.Threshold)

	assert.Equal(t, []events.Type{events.StateRestored}, dst.recorder.types())
}

func TestRestoreReplacesState(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	populate(t, f)

	empty, err := New(Options{DefaultThreshold: 20, Logger: testLogger()})
	require.NoError(t, err)
	_, err = f.svc.Restore(ctx, empty.Snapshot())
	require.NoError(t, err)

	assert.Len(t, f.svc.Directories(), 1)
	assert.Empty(t, f.svc.Medicines())
	assert.Empty(t, f.svc.Reminders())
	assert.Empty(t, f.svc.Records())
}

func TestRestoreSkipsBadEntries(t *testing.T) {
	t.Parallel()

	src := newFixture(t)
	populate(t, src)
	snap := src.svc.Snapshot()

	snap.Medicines = append(snap.Medicines, snap.Medicines[0])
	snap.Records = append(snap.Records, snap.Records[0])
	orphan := snap.Directories[len(snap.Directories)-1]
	orphan.Path = []string{"root", "missing", "orphan"}
	snap.Directories = append(snap.Directories, orphan)

	dst := newFixture(t)
	res, err := dst.svc.Restore(ctx, snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
	assert.ErrorIs(t, err, domain.ErrPathNotFound)
	assert.Equal(t, 3, res.Skipped)

	assert.Equal(t, src.svc.Medicines(), dst.svc.Medicines())
	assert.Len(t, dst.svc.Records(), len(src.svc.Records()))
}

func TestRestoreRepairsMedicineReminders(t *testing.T) {
	t.Parallel()

	src := newFixture(t)
	src.seedTypical(t)
	snap := src.svc.Snapshot()
	require.Len(t, snap.Reminders, 1)
	snap.Reminders = nil

	dst := newFixture(t)
	_, err := dst.svc.Restore(ctx, snap)
	require.NoError(t, err)

	med, ok := dst.svc.FindMedicine("med1")
	require.True(t, ok)
	_, ok = dst.svc.ReminderForMedicine(med.ID)
	assert.True(t, ok)
}

func TestRestoreKeepsAppointmentRemindersInStep(t *testing.T) {
	t.Parallel()

	src := newFixture(t)
	populate(t, src)
	snap := src.svc.Snapshot()
	require.Len(t, snap.Appointments, 1)
	booked := snap.Appointments[0]

	var reminders []domain.Reminder
	for _, r := range snap.Reminders {
		switch r.Origin {
		case domain.OriginAppointment:
			ghost := r
			ghost.ID = uuid.New()
			ghost.SourceID = uuid.New()
			reminders = append(reminders, ghost)
		case domain.OriginMedicineThreshold:
			reminders = append(reminders, r)
			ghost := r
			ghost.ID = uuid.New()
			ghost.SourceID = uuid.New()
			reminders = append(reminders, ghost)
		default:
			reminders = append(reminders, r)
		}
	}
	snap.Reminders = reminders

	dst := newFixture(t)
	res, err := dst.svc.Restore(ctx, snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAppointmentNotFound)
	assert.ErrorIs(t, err, domain.ErrMedicineNotFound)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Repaired)

	r, ok := dst.svc.ReminderForAppointment(booked.ID)
	require.True(t, ok)
	assert.Equal(t, booked.Title(), r.Title)
	assert.Len(t, dst.svc.Reminders(), len(src.svc.Reminders()))
	for _, r := range dst.svc.Reminders() {
		if r.Origin == domain.OriginAppointment {
			assert.Equal(t, booked.ID, r.SourceID)
		}
	}
}

func TestRestoreCountsRecordsInClinicTimezone(t *testing.T) {
	t.Parallel()

	sgt := time.FixedZone("SGT", 8*60*60)
	june := domain.Month{Year: 2024, Month: time.June}

	src := newFixture(t)
	src.clock.Set(time.Date(2024, 6, 1, 0, 30, 0, 0, sgt))
	_, err := src.svc.EndConsultation(ctx, alice)
	require.NoError(t, err)

	before, err := src.svc.Statistics(june, june)
	require.NoError(t, err)
	require.Equal(t, 1, before.ConsultationCount)

	snap := src.svc.Snapshot()
	for i := range snap.Records {
		snap.Records[i].Timestamp = snap.Records[i].Timestamp.UTC()
	}

	dst := newFixture(t)
	dst.clock.Set(time.Date(2024, 6, 2, 9, 0, 0, 0, sgt))
	_, err = dst.svc.Restore(ctx, snap)
	require.NoError(t, err)

	after, err := dst.svc.Statistics(june, june)
	require.NoError(t, err)
	assert.Equal(t, 1, after.ConsultationCount)

	may := domain.Month{Year: 2024, Month: time.May}
	earlier, err := dst.svc.Statistics(may, may)
	require.NoError(t, err)
	assert.Zero(t, earlier.ConsultationCount)
}

func TestRestoreRejectsUnusableSnapshots(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.Restore(ctx, nil)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	_, err = f.svc.Restore(ctx, &store.Snapshot{Version: store.SnapshotVersion + 1})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

type countingObserver struct {
	saves, failures int
}

func (o *countingObserver) ObserveSnapshotSave(_ time.Time, err error) {
	o.saves++
	if err != nil {
		o.failures++
	}
}

var errBroken = errors.New("disk unavailable")

type brokenStore struct{}

func (brokenStore) Load(context.Context) (*store.Snapshot, error) { return nil, errBroken }

func (brokenStore) Save(context.Context, *store.Snapshot) error { return errBroken }

func TestPersister(t *testing.T) {
	t.Parallel()

	t.Run("saves after every change", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		mem := store.NewMemoryStore()
		observer := &countingObserver{}
		f.emitter.RegisterHandler(NewPersister(f.svc, mem, observer, testLogger()))

		f.seedTypical(t)
		assert.Equal(t, 3, mem.Saves())
		assert.Equal(t, 3, observer.saves)

		saved, err := mem.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, saved.Medicines, 1)
	})

	t.Run("restored state is loaded at startup", func(t *testing.T) {
		t.Parallel()
		src := newFixture(t)
		mem := store.NewMemoryStore()
		src.emitter.RegisterHandler(NewPersister(src.svc, mem, nil, testLogger()))
		populate(t, src)

		dst := newFixture(t)
		res, err := LoadState(ctx, dst.svc, mem)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Skipped)
		assert.Equal(t, stockSummary(src.svc.Medicines()), stockSummary(dst.svc.Medicines()))
		assert.Len(t, dst.svc.Reminders(), len(src.svc.Reminders()))
		assert.Len(t, dst.svc.Records(), len(src.svc.Records()))
	})

	t.Run("empty store is a fresh start", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		res, err := LoadState(ctx, f.svc, store.NewMemoryStore())
		require.NoError(t, err)
		assert.Equal(t, RestoreResult{}, res)
	})

	t.Run("save failures are reported", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		observer := &countingObserver{}
		p := NewPersister(f.svc, brokenStore{}, observer, testLogger())

		err := p.Save(ctx)
		assert.ErrorIs(t, err, errBroken)
		assert.Equal(t, 1, observer.failures)
	})
}
