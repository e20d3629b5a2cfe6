// Package postgres stores clinic snapshots in PostgreSQL. Each snapshot is
// written across normalised tables inside one transaction, replacing the
// previous contents. The schema is embedded and applied with goose.
package postgres
