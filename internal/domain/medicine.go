package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RootDirectoryName is the name of the inventory root. Every path starts with it.
const RootDirectoryName = "root"

// Medicine is a read-only snapshot of an inventory leaf.
type Medicine struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Path      []string        `json:"path"` // owning directory, starting at root
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Threshold int             `json:"threshold"`
}

// BelowThreshold reports whether the medicine is owed a restock reminder.
func (m Medicine) BelowThreshold() bool {
	return m.Quantity <= m.Threshold
}

// FullPath returns the directory path followed by the medicine name.
func (m Medicine) FullPath() []string {
	p := make([]string, 0, len(m.Path)+1)
	p = append(p, m.Path...)
	return append(p, m.Name)
}

// Directory is a read-only snapshot of an inventory directory.
type Directory struct {
	Path           []string `json:"path"` // including the directory's own name
	Threshold      int      `json:"threshold"`
	Subdirectories []string `json:"subdirectories"`
	Medicines      []string `json:"medicines"`
}

// Name returns the directory's own name.
func (d Directory) Name() string {
	if len(d.Path) == 0 {
		return ""
	}
	return d.Path[len(d.Path)-1]
}

// ParentPath returns the path of the owning directory, or nil for the root.
func (d Directory) ParentPath() []string {
	if len(d.Path) <= 1 {
		return nil
	}
	return d.Path[:len(d.Path)-1]
}
