package store

import (
	"context"
	"time"

	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// SnapshotVersion is the layout version written by this build.
const SnapshotVersion = 1

// Snapshot is the complete persisted clinic state.
// Directories are listed in pre-order so parents always precede children.
type Snapshot struct {
	Version         int                  `json:"version"`
	SavedAt         time.Time            `json:"saved_at"`
	ConsultationFee decimal.Decimal      `json:"consultation_fee"`
	Directories     []domain.Directory   `json:"directories"`
	Medicines       []domain.Medicine    `json:"medicines"`
	Appointments    []domain.Appointment `json:"appointments"`
	Reminders       []domain.Reminder    `json:"reminders"`
	Records         []domain.Record      `json:"records"`
}

// SnapshotStore persists whole snapshots. Save replaces whatever was stored
// before. Load returns ErrSnapshotNotFound when nothing has been saved.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}
