package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/platform/logger"
	"github.com/phrazzld/clinicdesk/internal/store"
)

// snapshotTables lists the tables Save clears before writing.
var snapshotTables = []string{"records", "reminders", "appointments", "medicines", "directories"}

// SnapshotStore implements store.SnapshotStore on PostgreSQL.
type SnapshotStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore returns a store backed by db. If logger is nil the
// default logger is used.
func NewSnapshotStore(db *sql.DB, logger *slog.Logger) *SnapshotStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{
		db:     db,
		logger: logger.With(slog.String("component", "snapshot_store")),
	}
}

// Save replaces the stored snapshot with snap in a single transaction.
func (s *SnapshotStore) Save(ctx context.Context, snap *store.Snapshot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", store.ErrInvalidEntity)
	}

	ctx = logger.WithLogger(ctx, log)
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, table := range snapshotTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return MapError(err)
			}
		}
		if err := saveSettings(ctx, tx, snap); err != nil {
			return err
		}
		if err := saveDirectories(ctx, tx, snap.Directories); err != nil {
			return err
		}
		if err := saveMedicines(ctx, tx, snap.Medicines); err != nil {
			return err
		}
		if err := saveAppointments(ctx, tx, snap.Appointments); err != nil {
			return err
		}
		if err := saveReminders(ctx, tx, snap.Reminders); err != nil {
			return err
		}
		return saveRecords(ctx, tx, snap.Records)
	})
	if err != nil {
		log.Error("failed to save snapshot", slog.String("error", err.Error()))
		return store.NewStoreError("snapshot", "save", "could not write snapshot", err)
	}

	log.Debug("snapshot saved",
		slog.Int("medicines", len(snap.Medicines)),
		slog.Int("records", len(snap.Records)))
	return nil
}

// Load reads the stored snapshot. It returns store.ErrSnapshotNotFound when
// nothing has been saved.
func (s *SnapshotStore) Load(ctx context.Context) (*store.Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var snap store.Snapshot
	ctx = logger.WithLogger(ctx, log)
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT version, saved_at, consultation_fee FROM clinic_settings WHERE id = 1`,
		).Scan(&snap.Version, &snap.SavedAt, &snap.ConsultationFee)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrSnapshotNotFound
		}
		if err != nil {
			return MapError(err)
		}

		if snap.Directories, err = loadDirectories(ctx, tx); err != nil {
			return err
		}
		if snap.Medicines, err = loadMedicines(ctx, tx); err != nil {
			return err
		}
		if snap.Appointments, err = loadAppointments(ctx, tx); err != nil {
			return err
		}
		if snap.Reminders, err = loadReminders(ctx, tx); err != nil {
			return err
		}
		snap.Records, err = loadRecords(ctx, tx)
		return err
	})
	if errors.Is(err, store.ErrSnapshotNotFound) {
		log.Debug("no snapshot stored")
		return nil, err
	}
	if err != nil {
		log.Error("failed to load snapshot", slog.String("error", err.Error()))
		return nil, store.NewStoreError("snapshot", "load", "could not read snapshot", err)
	}
	return &snap, nil
}

func saveSettings(ctx context.Context, q store.DBTX, snap *store.Snapshot) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO clinic_settings (id, version, saved_at, consultation_fee)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET version = EXCLUDED.version,
			saved_at = EXCLUDED.saved_at,
			consultation_fee = EXCLUDED.consultation_fee
	`, snap.Version, snap.SavedAt, snap.ConsultationFee)
	return MapError(err)
}

func saveDirectories(ctx context.Context, q store.DBTX, dirs []domain.Directory) error {
	for i, d := range dirs {
		path, err := json.Marshal(d.Path)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO directories (position, path, threshold) VALUES ($1, $2::jsonb, $3)`,
			i, string(path), d.Threshold)
		if err != nil {
			return MapError(err)
		}
	}
	return nil
}

func saveMedicines(ctx context.Context, q store.DBTX, meds []domain.Medicine) error {
	for i, m := range meds {
		path, err := json.Marshal(m.Path)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO medicines (position, id, name, path, quantity, price, threshold)
			VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7)
		`, i, m.ID, m.Name, string(path), m.Quantity, m.Price, m.Threshold)
		if err != nil {
			return MapError(err)
		}
	}
	return nil
}

func saveAppointments(ctx context.Context, q store.DBTX, appts []domain.Appointment) error {
	for _, a := range appts {
		_, err := q.ExecContext(ctx, `
			INSERT INTO appointments (id, patient_nric, patient_name, date, start_time, end_time, comment)
			VALUES ($1, $2, $3, $4::date, $5::time, $6::time, $7)
		`, a.ID, a.Patient.NRIC, a.Patient.Name, a.Date.String(), a.Start.String(), a.End.String(), a.Comment)
		if err != nil {
			return MapError(err)
		}
	}
	return nil
}

func saveReminders(ctx context.Context, q store.DBTX, reminders []domain.Reminder) error {
	for _, r := range reminders {
		source := uuid.NullUUID{UUID: r.SourceID, Valid: r.SourceID != uuid.Nil}
		_, err := q.ExecContext(ctx, `
			INSERT INTO reminders (id, title, comment, date, start_time, end_time, origin, source_id)
			VALUES ($1, $2, $3, $4::date, $5::time, $6::time, $7, $8)
		`, r.ID, r.Title, r.Comment, r.Date.String(), r.Start.String(), r.End.String(), string(r.Origin), source)
		if err != nil {
			return MapError(err)
		}
	}
	return nil
}

func saveRecords(ctx context.Context, q store.DBTX, records []domain.Record) error {
	for i, r := range records {
		var nric, name sql.NullString
		if r.Patient != nil {
			nric = sql.NullString{String: r.Patient.NRIC, Valid: true}
			name = sql.NullString{String: r.Patient.Name, Valid: true}
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO records (position, id, kind, amount, recorded_at, description, quantity, patient_nric, patient_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, i, r.ID, string(r.Kind), r.Amount, r.Timestamp, r.Description, r.Quantity, nric, name)
		if err != nil {
			return MapError(err)
		}
	}
	return nil
}

func loadDirectories(ctx context.Context, q store.DBTX) ([]domain.Directory, error) {
	rows, err := q.QueryContext(ctx, `SELECT path, threshold FROM directories ORDER BY position`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	dirs := []domain.Directory{}
	for rows.Next() {
		var (
			d    domain.Directory
			path []byte
		)
		if err := rows.Scan(&path, &d.Threshold); err != nil {
			return nil, MapError(err)
		}
		if err := json.Unmarshal(path, &d.Path); err != nil {
			return nil, fmt.Errorf("%w: directory path: %w", store.ErrInvalidEntity, err)
		}
		dirs = append(dirs, d)
	}
	return dirs, MapError(rows.Err())
}

func loadMedicines(ctx context.Context, q store.DBTX) ([]domain.Medicine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, path, quantity, price, threshold
		FROM medicines
		ORDER BY position
	`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	meds := []domain.Medicine{}
	for rows.Next() {
		var (
			m    domain.Medicine
			path []byte
		)
		if err := rows.Scan(&m.ID, &m.Name, &path, &m.Quantity, &m.Price, &m.Threshold); err != nil {
			return nil, MapError(err)
		}
		if err := json.Unmarshal(path, &m.Path); err != nil {
			return nil, fmt.Errorf("%w: medicine path: %w", store.ErrInvalidEntity, err)
		}
		meds = append(meds, m)
	}
	return meds, MapError(rows.Err())
}

func loadAppointments(ctx context.Context, q store.DBTX) ([]domain.Appointment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, patient_nric, patient_name, date::text, start_time::text, end_time::text, comment
		FROM appointments
		ORDER BY date, start_time
	`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	appts := []domain.Appointment{}
	for rows.Next() {
		var (
			a                domain.Appointment
			date, start, end string
		)
		if err := rows.Scan(&a.ID, &a.Patient.NRIC, &a.Patient.Name, &date, &start, &end, &a.Comment); err != nil {
			return nil, MapError(err)
		}
		if a.Date, a.Start, a.End, err = parseSlot(date, start, end); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, MapError(rows.Err())
}

func loadReminders(ctx context.Context, q store.DBTX) ([]domain.Reminder, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, title, comment, date::text, start_time::text, end_time::text, origin, source_id
		FROM reminders
		ORDER BY date, start_time
	`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	reminders := []domain.Reminder{}
	for rows.Next() {
		var (
			r                domain.Reminder
			date, start, end string
			origin           string
			source           uuid.NullUUID
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Comment, &date, &start, &end, &origin, &source); err != nil {
			return nil, MapError(err)
		}
		if r.Date, r.Start, r.End, err = parseSlot(date, start, end); err != nil {
			return nil, err
		}
		r.Origin = domain.ReminderOrigin(origin)
		if source.Valid {
			r.SourceID = source.UUID
		}
		reminders = append(reminders, r)
	}
	return reminders, MapError(rows.Err())
}

func loadRecords(ctx context.Context, q store.DBTX) ([]domain.Record, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, kind, amount, recorded_at, description, quantity, patient_nric, patient_name
		FROM records
		ORDER BY position
	`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := []domain.Record{}
	for rows.Next() {
		var (
			r          domain.Record
			kind       string
			nric, name sql.NullString
		)
		if err := rows.Scan(&r.ID, &kind, &r.Amount, &r.Timestamp, &r.Description, &r.Quantity, &nric, &name); err != nil {
			return nil, MapError(err)
		}
		r.Kind = domain.RecordKind(kind)
		if nric.Valid {
			r.Patient = &domain.Patient{NRIC: nric.String, Name: name.String}
		}
		records = append(records, r)
	}
	return records, MapError(rows.Err())
}

// parseSlot converts the text form of a DATE and two TIME columns.
func parseSlot(date, start, end string) (civil.Date, civil.Time, civil.Time, error) {
	d, err := civil.ParseDate(date)
	if err != nil {
		return civil.Date{}, civil.Time{}, civil.Time{}, fmt.Errorf("%w: date %q: %w", store.ErrInvalidEntity, date, err)
	}
	s, err := civil.ParseTime(start)
	if err != nil {
		return civil.Date{}, civil.Time{}, civil.Time{}, fmt.Errorf("%w: time %q: %w", store.ErrInvalidEntity, start, err)
	}
	e, err := civil.ParseTime(end)
	if err != nil {
		return civil.Date{}, civil.Time{}, civil.Time{}, fmt.Errorf("%w: time %q: %w", store.ErrInvalidEntity, end, err)
	}
	return d, s, e, nil
}
