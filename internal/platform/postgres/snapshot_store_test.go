package postgres_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/clinicdesk/internal/clinic"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/platform/postgres"
	"github.com/phrazzld/clinicdesk/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	medID    = uuid.MustParse("6f1c1c8e-8d7e-4a53-9d0e-0b6f3e4b2a10")
	apptID   = uuid.MustParse("0d3f6f7a-2f43-4a7b-8c7d-5a4f1f6e9b21")
	remindID = uuid.MustParse("a3c5b7d9-1e2f-4a6b-8c0d-2e4f6a8b0c32")
	recordID = uuid.MustParse("b4d6c8e0-2f3a-4b7c-9d1e-3f5a7b9c1d43")
	savedAt  = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
)

func newTestStore(t *testing.T) (*postgres.SnapshotStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewSnapshotStore(db, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func testSnapshot() *store.Snapshot {
	alice := domain.Patient{NRIC: "S1234567A", Name: "Alice"}
	return &store.Snapshot{
		Version:         store.SnapshotVersion,
		SavedAt:         savedAt,
		ConsultationFee: decimal.RequireFromString("30"),
		Directories: []domain.Directory{
			{Path: []string{"root"}, Threshold: 20},
			{Path: []string{"root", "test1"}, Threshold: 20},
		},
		Medicines: []domain.Medicine{{
			ID:        medID,
			Name:      "med1",
			Path:      []string{"root", "test1"},
			Quantity:  70,
			Price:     decimal.RequireFromString("1.20"),
			Threshold: 20,
		}},
		Appointments: []domain.Appointment{{
			ID:      apptID,
			Patient: alice,
			Date:    civil.Date{Year: 2024, Month: time.May, Day: 10},
			Start:   civil.Time{Hour: 9},
			End:     civil.Time{Hour: 9, Minute: 30},
			Comment: "checkup",
		}},
		Reminders: []domain.Reminder{{
			ID:       remindID,
			Title:    "Appointment with Alice (S1234567A)",
			Date:     civil.Date{Year: 2024, Month: time.May, Day: 10},
			Start:    civil.Time{Hour: 9},
			End:      civil.Time{Hour: 9, Minute: 30},
			Origin:   domain.OriginAppointment,
			SourceID: apptID,
		}},
		Records: []domain.Record{{
			ID:        recordID,
			Kind:      domain.RecordConsultation,
			Amount:    decimal.RequireFromString("30"),
			Timestamp: savedAt,
			Patient:   &alice,
		}},
	}
}

func expectClear(mock sqlmock.Sqlmock) {
	for _, table := range []string{"records", "reminders", "appointments", "medicines", "directories"} {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestSnapshotStoreSave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("writes every table in one transaction", func(t *testing.T) {
		t.Parallel()
		s, mock := newTestStore(t)

		mock.ExpectBegin()
		expectClear(mock)
		mock.ExpectExec("INSERT INTO clinic_settings").
			WithArgs(store.SnapshotVersion, savedAt, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO directories").
			WithArgs(0, `["root"]`, 20).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO directories").
			WithArgs(1, `["root","test1"]`, 20).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO medicines").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO appointments").
			WithArgs(apptID.String(), "S1234567A", "Alice", "2024-05-10", "09:00:00", "09:30:00", "checkup").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO reminders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO records").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Save(ctx, testSnapshot()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("constraint violations roll back", func(t *testing.T) {
		t.Parallel()
		s, mock := newTestStore(t)

		mock.ExpectBegin()
		expectClear(mock)
		mock.ExpectExec("INSERT INTO clinic_settings").
			WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "clinic_settings_consultation_fee_check"})
		mock.ExpectRollback()

		err := s.Save(ctx, testSnapshot())
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		var storeErr *store.StoreError
		assert.ErrorAs(t, err, &storeErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil snapshot", func(t *testing.T) {
		t.Parallel()
		s, mock := newTestStore(t)
		assert.ErrorIs(t, s.Save(ctx, nil), store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSnapshotStoreLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reads every table", func(t *testing.T) {
		t.Parallel()
		s, mock := newTestStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT version, saved_at, consultation_fee FROM clinic_settings").
			WillReturnRows(sqlmock.NewRows([]string{"version", "saved_at", "consultation_fee"}).
				AddRow(int64(1), savedAt, "30"))
		mock.ExpectQuery("SELECT path, threshold FROM directories").
			WillReturnRows(sqlmock.NewRows([]string{"path", "threshold"}).
				AddRow([]byte(`["root"]`), int64(20)).
				AddRow([]byte(`["root","test1"]`), int64(20)))
		mock.ExpectQuery("FROM medicines").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "path", "quantity", "price", "threshold"}).
				AddRow(medID.String(), "med1", []byte(`["root","test1"]`), int64(70), "1.20", int64(20)))
		mock.ExpectQuery("FROM appointments").
			WillReturnRows(sqlmock.NewRows([]string{"id", "patient_nric", "patient_name", "date", "start_time", "end_time", "comment"}).
				AddRow(apptID.String(), "S1234567A", "Alice", "2024-05-10", "09:00:00", "09:30:00", "checkup"))
		mock.ExpectQuery("FROM reminders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "comment", "date", "start_time", "end_time", "origin", "source_id"}).
				AddRow(remindID.String(), "Appointment with Alice (S1234567A)", "", "2024-05-10", "09:00:00", "09:30:00", "appointment", apptID.String()))
		mock.ExpectQuery("FROM records").
			WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "amount", "recorded_at", "description", "quantity", "patient_nric", "patient_name"}).
				AddRow(recordID.String(), "consultation", "30", savedAt, "", int64(0), "S1234567A", "Alice"))
		mock.ExpectCommit()

		snap, err := s.Load(ctx)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())

		want := testSnapshot()
		assert.Equal(t, want.Version, snap.Version)
		assert.True(t, want.ConsultationFee.Equal(snap.ConsultationFee))
		assert.Equal(t, want.Directories, snap.Directories)
		assert.Equal(t, want.Appointments, snap.Appointments)
		assert.Equal(t, want.Reminders, snap.Reminders)

		require.Len(t, snap.Medicines, 1)
		assert.Equal(t, medID, snap.Medicines[0].ID)
		assert.Equal(t, []string{"root", "test1"}, snap.Medicines[0].Path)
		assert.True(t, snap.Medicines[0].Price.Equal(decimal.RequireFromString("1.2")))

		require.Len(t, snap.Records, 1)
		require.NotNil(t, snap.Records[0].Patient)
		assert.Equal(t, "Alice", snap.Records[0].Patient.Name)
		assert.Equal(t, savedAt, snap.Records[0].Timestamp)
	})

	t.Run("records keep their clinic month after a restart", func(t *testing.T) {
		t.Parallel()
		s, mock := newTestStore(t)

		// Postgres hands timestamptz back in UTC; this is 2024-06-01 00:30 SGT.
		recordedAt := time.Date(2024, 5, 31, 16, 30, 0, 0, time.UTC)
		mock.ExpectBegin()
		mock.ExpectQuery("FROM clinic_settings").
			WillReturnRows(sqlmock.NewRows([]string{"version", "saved_at", "consultation_fee"}).
				AddRow(int64(1), savedAt, "30"))
		mock.ExpectQuery("FROM directories").WillReturnRows(sqlmock.NewRows([]string{"path", "threshold"}))
		mock.ExpectQuery("FROM medicines").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "path", "quantity", "price", "threshold"}))
		mock.ExpectQuery("FROM appointments").
			WillReturnRows(sqlmock.NewRows([]string{"id", "patient_nric", "patient_name", "date", "start_time", "end_time", "comment"}))
		mock.ExpectQuery("FROM reminders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "comment", "date", "start_time", "end_time", "origin", "source_id"}))
		mock.ExpectQuery("FROM records").
			WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "amount", "recorded_at", "description", "quantity", "patient_nric", "patient_name"}).
				AddRow(recordID.String(), "consultation", "30", recordedAt, "", int64(0), "S1234567A", "Alice"))
		mock.ExpectCommit()

		sgt := time.FixedZone("SGT", 8*60*60)
		svc, err := clinic.New(clinic.Options{
			Clock:  domain.FixedClock(time.Date(2024, 6, 15, 10, 0, 0, 0, sgt)),
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		require.NoError(t, err)

		res, err := clinic.LoadState(ctx, svc, s)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Records)
		assert.NoError(t, mock.ExpectationsWereMet())

		june := domain.Month{Year: 2024, Month: time.June}
		stats, err := svc.Statistics(june, june)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.ConsultationCount)
	})

	t.Run("nothing saved yet", func(t *testing.T) {
		t.Parallel()
		s, mock := newTestStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM clinic_settings").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		snap, err := s.Load(ctx)
		assert.Nil(t, snap)
		assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt time column", func(t *testing.T) {
		t.Parallel()
		s, mock := newTestStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM clinic_settings").
			WillReturnRows(sqlmock.NewRows([]string{"version", "saved_at", "consultation_fee"}).
				AddRow(int64(1), savedAt, "30"))
		mock.ExpectQuery("FROM directories").WillReturnRows(sqlmock.NewRows([]string{"path", "threshold"}))
		mock.ExpectQuery("FROM medicines").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "path", "quantity", "price", "threshold"}))
		mock.ExpectQuery("FROM appointments").
			WillReturnRows(sqlmock.NewRows([]string{"id", "patient_nric", "patient_name", "date", "start_time", "end_time", "comment"}).
				AddRow(apptID.String(), "S1234567A", "Alice", "2024-05-10", "nine", "09:30:00", ""))
		mock.ExpectRollback()

		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
