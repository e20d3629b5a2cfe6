// Package testdb provides helpers for tests that need a real PostgreSQL
// database. Tests using it skip when no database URL is configured.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/clinicdesk/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds setup work against the test database.
const TestTimeout = 10 * time.Second

// GetTestDatabaseURL returns CLINIC_TEST_DB_URL, falling back to
// CLINIC_DATABASE_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("CLINIC_TEST_DB_URL"); url != "" {
		return url
	}
	return os.Getenv("CLINIC_DATABASE_URL")
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDBWithT opens the test database with the schema applied and every
// clinic table emptied. The test is skipped when no database is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("CLINIC_TEST_DB_URL or CLINIC_DATABASE_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db, nil), "failed to run migrations")
	ResetTables(t, db)
	return db
}

// ResetTables empties every clinic table.
func ResetTables(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.ExecContext(context.Background(),
		`TRUNCATE clinic_settings, directories, medicines, appointments, reminders, records`)
	require.NoError(t, err, "failed to truncate clinic tables")
}
