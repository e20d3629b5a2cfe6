// Package inventory implements the hierarchical medicine directory.
//
// Directories and medicines live in two arenas addressed by stable index.
// Each directory keeps the indices of its children and medicines in
// insertion order, and each node keeps the index of its owning directory,
// so the tree can be walked both ways without shared pointers.
package inventory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/shopspring/decimal"
)

const noParent = -1

type directoryNode struct {
	name      string
	parent    int
	children  []int
	medicines []int
	threshold int
}

type medicineNode struct {
	id        uuid.UUID
	name      string
	quantity  int
	price     decimal.Decimal
	threshold int
	directory int
}

// NewMedicine describes a medicine to insert. Quantity defaults to zero.
type NewMedicine struct {
	ID       uuid.UUID // optional; generated when nil
	Name     string
	Quantity int
	Path     []string
	Price    decimal.Decimal
}

// Tree is the medicine directory. It is safe for concurrent use.
type Tree struct {
	mu          sync.RWMutex
	directories []directoryNode
	medicines   []medicineNode
}

// NewTree creates a tree holding only the root directory with the given
// default threshold.
func NewTree(defaultThreshold int) (*Tree, error) {
	if defaultThreshold < 0 {
		return nil, fmt.Errorf("%w: threshold %d", domain.ErrInvalidQuantity, defaultThreshold)
	}
	return &Tree{
		directories: []directoryNode{{
			name:      domain.RootDirectoryName,
			parent:    noParent,
			threshold: defaultThreshold,
		}},
	}, nil
}

// AddDirectory inserts an empty directory called name under the directory at path.
// The new directory inherits its parent's threshold.
func (t *Tree) AddDirectory(name string, path []string) (domain.Directory, error) {
	if err := validateName(name); err != nil {
		return domain.Directory{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	parent, err := t.resolveDirectory(path)
	if err != nil {
		return domain.Directory{}, err
	}
	if _, ok := t.childDirectory(parent, name); ok {
		return domain.Directory{}, fmt.Errorf("%w: directory %q already exists under %s",
			domain.ErrDuplicateEntry, name, strings.Join(path, "/"))
	}

	idx := len(t.directories)
	t.directories = append(t.directories, directoryNode{
		name:      name,
		parent:    parent,
		threshold: t.directories[parent].threshold,
	})
	t.directories[parent].children = append(t.directories[parent].children, idx)

	return t.directorySnapshot(idx), nil
}

// AddMedicine inserts a medicine leaf under the directory at m.Path.
// The medicine inherits the directory's threshold.
func (t *Tree) AddMedicine(m NewMedicine) (domain.Medicine, error) {
	if err := validateName(m.Name); err != nil {
		return domain.Medicine{}, err
	}
	if m.Quantity < 0 {
		return domain.Medicine{}, fmt.Errorf("%w: quantity %d", domain.ErrInvalidQuantity, m.Quantity)
	}
	if m.Price.IsNegative() {
		return domain.Medicine{}, fmt.Errorf("%w: price %s", domain.ErrInvalidAmount, m.Price)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	dir, err := t.resolveDirectory(m.Path)
	if err != nil {
		return domain.Medicine{}, err
	}
	if _, ok := t.childMedicine(dir, m.Name); ok {
		return domain.Medicine{}, fmt.Errorf("%w: medicine %q already exists under %s",
			domain.ErrDuplicateEntry, m.Name, strings.Join(m.Path, "/"))
	}

	id := m.ID
	if id == uuid.Nil {
		id = uuid.New()
	} else {
		for _, existing := range t.medicines {
			if existing.id == id {
				return domain.Medicine{}, fmt.Errorf("%w: medicine id %s", domain.ErrDuplicateEntry, id)
			}
		}
	}

	idx := len(t.medicines)
	t.medicines = append(t.medicines, medicineNode{
		id:        id,
		name:      m.Name,
		quantity:  m.Quantity,
		price:     m.Price,
		threshold: t.directories[dir].threshold,
		directory: dir,
	})
	t.directories[dir].medicines = append(t.directories[dir].medicines, idx)

	return t.medicineSnapshot(idx), nil
}

// FindMedicine returns the first medicine called name in a pre-order walk:
// a directory's own medicines in insertion order, then each child directory
// depth-first. Names are not globally unique; only the first match is returned.
func (t *Tree) FindMedicine(name string) (domain.Medicine, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, ok := t.findByName(name)
	if !ok {
		return domain.Medicine{}, false
	}
	return t.medicineSnapshot(idx), true
}

// FindMedicineByPath resolves a full path whose last segment is a medicine name.
func (t *Tree) FindMedicineByPath(path []string) (domain.Medicine, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, err := t.resolveMedicine(path)
	if err != nil {
		return domain.Medicine{}, false
	}
	return t.medicineSnapshot(idx), true
}

// FindMedicineByID looks a medicine up by its identifier.
func (t *Tree) FindMedicineByID(id uuid.UUID) (domain.Medicine, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.medicines {
		if t.medicines[i].id == id {
			return t.medicineSnapshot(i), true
		}
	}
	return domain.Medicine{}, false
}

// FindDirectory resolves a directory path.
func (t *Tree) FindDirectory(path []string) (domain.Directory, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, err := t.resolveDirectory(path)
	if err != nil {
		return domain.Directory{}, false
	}
	return t.directorySnapshot(idx), true
}

// PurchaseByPath adds quantity units to the medicine at path.
func (t *Tree) PurchaseByPath(path []string, quantity int) (domain.Medicine, error) {
	if err := validateUnits(quantity); err != nil {
		return domain.Medicine{}, err
	}
	return t.adjustStock(func() (int, error) { return t.resolveMedicine(path) }, quantity)
}

// PurchaseByName adds quantity units to the first medicine called name.
func (t *Tree) PurchaseByName(name string, quantity int) (domain.Medicine, error) {
	if err := validateUnits(quantity); err != nil {
		return domain.Medicine{}, err
	}
	return t.adjustStock(func() (int, error) { return t.resolveName(name) }, quantity)
}

// DispenseByPath removes quantity units from the medicine at path.
func (t *Tree) DispenseByPath(path []string, quantity int) (domain.Medicine, error) {
	if err := validateUnits(quantity); err != nil {
		return domain.Medicine{}, err
	}
	return t.adjustStock(func() (int, error) { return t.resolveMedicine(path) }, -quantity)
}

// DispenseByName removes quantity units from the first medicine called name.
func (t *Tree) DispenseByName(name string, quantity int) (domain.Medicine, error) {
	if err := validateUnits(quantity); err != nil {
		return domain.Medicine{}, err
	}
	return t.adjustStock(func() (int, error) { return t.resolveName(name) }, -quantity)
}

// adjustStock applies a signed, already validated quantity change.
// Stock never goes below zero.
func (t *Tree) adjustStock(resolve func() (int, error), delta int) (domain.Medicine, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := resolve()
	if err != nil {
		return domain.Medicine{}, err
	}
	med := &t.medicines[idx]
	if med.quantity+delta < 0 {
		return domain.Medicine{}, fmt.Errorf("%w: %q has %d, requested %d",
			domain.ErrInsufficientStock, med.name, med.quantity, -delta)
	}
	med.quantity += delta
	return t.medicineSnapshot(idx), nil
}

// SetDirectoryThreshold sets value on the directory at path and, in pre-order,
// on every descendant directory and medicine. Existing per-node values are
// overwritten. The updated medicines are returned in visiting order.
func (t *Tree) SetDirectoryThreshold(path []string, value int) ([]domain.Medicine, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: threshold %d", domain.ErrInvalidQuantity, value)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	dir, err := t.resolveDirectory(path)
	if err != nil {
		return nil, err
	}

	var touched []domain.Medicine
	t.walk(dir, func(d int) {
		t.directories[d].threshold = value
		for _, m := range t.directories[d].medicines {
			t.medicines[m].threshold = value
			touched = append(touched, t.medicineSnapshot(m))
		}
	})
	return touched, nil
}

// SetMedicineThreshold overrides the threshold of a single medicine.
func (t *Tree) SetMedicineThreshold(path []string, value int) (domain.Medicine, error) {
	if value < 0 {
		return domain.Medicine{}, fmt.Errorf("%w: threshold %d", domain.ErrInvalidQuantity, value)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.resolveMedicine(path)
	if err != nil {
		return domain.Medicine{}, err
	}
	t.medicines[idx].threshold = value
	return t.medicineSnapshot(idx), nil
}

// SetPrice replaces the unit price of the medicine at path.
func (t *Tree) SetPrice(path []string, price decimal.Decimal) (domain.Medicine, error) {
	if price.IsNegative() {
		return domain.Medicine{}, fmt.Errorf("%w: price %s", domain.ErrInvalidAmount, price)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.resolveMedicine(path)
	if err != nil {
		return domain.Medicine{}, err
	}
	t.medicines[idx].price = price
	return t.medicineSnapshot(idx), nil
}

// Directories returns every directory in pre-order, root first.
func (t *Tree) Directories() []domain.Directory {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Directory, 0, len(t.directories))
	t.walk(0, func(d int) {
		out = append(out, t.directorySnapshot(d))
	})
	return out
}

// Medicines returns every medicine in the same pre-order FindMedicine uses.
func (t *Tree) Medicines() []domain.Medicine {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Medicine, 0, len(t.medicines))
	t.walk(0, func(d int) {
		for _, m := range t.directories[d].medicines {
			out = append(out, t.medicineSnapshot(m))
		}
	})
	return out
}

// SetDirectoryOwnThreshold sets a single directory's threshold without
// touching descendants. Used when replaying stored per-node overrides.
func (t *Tree) SetDirectoryOwnThreshold(path []string, value int) error {
	if value < 0 {
		return fmt.Errorf("%w: threshold %d", domain.ErrInvalidQuantity, value)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	dir, err := t.resolveDirectory(path)
	if err != nil {
		return err
	}
	t.directories[dir].threshold = value
	return nil
}

func validateUnits(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidQuantity, quantity)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name", "cannot be empty", nil)
	}
	return nil
}
