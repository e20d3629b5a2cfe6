package inventory

import (
	"testing"

	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	directoryNames = []string{"test1", "test2", "test3"}
	medicineNames  = []string{"med1", "med2", "med3"}
)

// newTypicalTree builds root/test1, root/test2 and root/test3.
func newTypicalTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := NewTree(0)
	require.NoError(t, err)
	for _, name := range directoryNames {
		_, err := tree.AddDirectory(name, []string{"root"})
		require.NoError(t, err)
	}
	return tree
}

func addMedicine(t *testing.T, tree *Tree, name string, quantity int, path ...string) domain.Medicine {
	t.Helper()
	med, err := tree.AddMedicine(NewMedicine{
		Name:     name,
		Quantity: quantity,
		Path:     path,
		Price:    decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	return med
}

func TestNewTree(t *testing.T) {
	t.Parallel()

	t.Run("root only", func(t *testing.T) {
		tree, err := NewTree(5)
		require.NoError(t, err)
		dirs := tree.Directories()
		require.Len(t, dirs, 1)
		assert.Equal(t, []string{"root"}, dirs[0].Path)
		assert.Equal(t, 5, dirs[0].Threshold)
	})

	t.Run("negative threshold", func(t *testing.T) {
		_, err := NewTree(-1)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})
}

func TestAddDirectory(t *testing.T) {
	t.Parallel()

	t.Run("unknown path", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddDirectory("x", []string{"root", "missing"})
		assert.ErrorIs(t, err, domain.ErrPathNotFound)
	})

	t.Run("wrong root", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddDirectory("x", []string{"RRR"})
		assert.ErrorIs(t, err, domain.ErrPathNotFound)
	})

	t.Run("duplicate sibling", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddDirectory("test1", []string{"root"})
		assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddDirectory("TEST1", []string{"root"})
		assert.NoError(t, err)
	})

	t.Run("same name under different parents", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddDirectory("shared", []string{"root", "test1"})
		require.NoError(t, err)
		_, err = tree.AddDirectory("shared", []string{"root", "test2"})
		assert.NoError(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddDirectory(" ", []string{"root"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("inherits parent threshold", func(t *testing.T) {
		tree, err := NewTree(7)
		require.NoError(t, err)
		dir, err := tree.AddDirectory("antibiotics", []string{"root"})
		require.NoError(t, err)
		assert.Equal(t, 7, dir.Threshold)
		assert.Equal(t, []string{"root", "antibiotics"}, dir.Path)
	})
}

func TestAddMedicine(t *testing.T) {
	t.Parallel()

	t.Run("wrong path", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddMedicine(NewMedicine{Name: medicineNames[0], Path: []string{"RRR"}})
		assert.ErrorIs(t, err, domain.ErrPathNotFound)
	})

	t.Run("quantity defaults to zero", func(t *testing.T) {
		tree := newTypicalTree(t)
		med, err := tree.AddMedicine(NewMedicine{Name: medicineNames[0], Path: []string{"root", "test1"}})
		require.NoError(t, err)
		assert.Equal(t, 0, med.Quantity)
		assert.True(t, med.Price.IsZero())
	})

	t.Run("duplicate in same directory", func(t *testing.T) {
		tree := newTypicalTree(t)
		addMedicine(t, tree, medicineNames[0], 1, "root", "test1")
		_, err := tree.AddMedicine(NewMedicine{Name: medicineNames[0], Path: []string{"root", "test1"}})
		assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
	})

	t.Run("negative quantity", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddMedicine(NewMedicine{Name: "x", Quantity: -1, Path: []string{"root"}})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		assert.Empty(t, tree.Medicines())
	})

	t.Run("negative price", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddMedicine(NewMedicine{Name: "x", Path: []string{"root"}, Price: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestFindMedicine(t *testing.T) {
	t.Parallel()

	t.Run("search by name", func(t *testing.T) {
		tree := newTypicalTree(t)
		addMedicine(t, tree, medicineNames[0], 0, "root", "test1")
		med, ok := tree.FindMedicine(medicineNames[0])
		require.True(t, ok)
		assert.Equal(t, medicineNames[0], med.Name)
		assert.Equal(t, []string{"root", "test1"}, med.Path)
	})

	t.Run("search through wrong path", func(t *testing.T) {
		tree := newTypicalTree(t)
		addMedicine(t, tree, medicineNames[0], 0, "root", "test2")
		_, ok := tree.FindMedicineByPath([]string{"root", "test1", medicineNames[0]})
		assert.False(t, ok)
	})

	t.Run("search through right path", func(t *testing.T) {
		tree := newTypicalTree(t)
		addMedicine(t, tree, medicineNames[0], 0, "root", "test2")
		med, ok := tree.FindMedicineByPath([]string{"root", "test2", medicineNames[0]})
		require.True(t, ok)
		assert.Equal(t, medicineNames[0], med.Name)
	})

	t.Run("missing name", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, ok := tree.FindMedicine("nothing")
		assert.False(t, ok)
	})

	t.Run("pre-order returns first match", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.AddDirectory("deep", []string{"root", "test1"})
		require.NoError(t, err)
		deep := addMedicine(t, tree, "dup", 1, "root", "test1", "deep")
		addMedicine(t, tree, "dup", 2, "root", "test2")

		med, ok := tree.FindMedicine("dup")
		require.True(t, ok)
		assert.Equal(t, deep.ID, med.ID, "depth-first under test1 comes before test2")

		own := addMedicine(t, tree, "dup", 3, "root")
		med, ok = tree.FindMedicine("dup")
		require.True(t, ok)
		assert.Equal(t, own.ID, med.ID, "a directory's own medicines come before its children")
	})
}

func TestPurchaseMedicine(t *testing.T) {
	t.Parallel()

	t.Run("via path", func(t *testing.T) {
		tree := newTypicalTree(t)
		addMedicine(t, tree, medicineNames[0], 20, "root", "test2")
		_, err := tree.PurchaseByPath([]string{"root", "test2", medicineNames[0]}, 50)
		require.NoError(t, err)
		med, ok := tree.FindMedicineByPath([]string{"root", "test2", medicineNames[0]})
		require.True(t, ok)
		assert.Equal(t, 70, med.Quantity)
	})

	t.Run("without path", func(t *testing.T) {
		tree := newTypicalTree(t)
		addMedicine(t, tree, medicineNames[0], 20, "root", "test2")
		updated, err := tree.PurchaseByName(medicineNames[0], 50)
		require.NoError(t, err)
		assert.Equal(t, 70, updated.Quantity)
	})

	t.Run("monotonic over repeated purchases", func(t *testing.T) {
		tree := newTypicalTree(t)
		addMedicine(t, tree, medicineNames[1], 0, "root", "test3")
		path := []string{"root", "test3", medicineNames[1]}
		for q := 1; q <= 5; q++ {
			before, _ := tree.FindMedicineByPath(path)
			after, err := tree.PurchaseByPath(path, q)
			require.NoError(t, err)
			assert.Equal(t, before.Quantity+q, after.Quantity)
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		tree := newTypicalTree(t)
		addMedicine(t, tree, medicineNames[0], 20, "root", "test2")
		for _, q := range []int{0, -3} {
			_, err := tree.PurchaseByName(medicineNames[0], q)
			assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		}
		med, _ := tree.FindMedicine(medicineNames[0])
		assert.Equal(t, 20, med.Quantity)
	})

	t.Run("missing medicine", func(t *testing.T) {
		tree := newTypicalTree(t)
		_, err := tree.PurchaseByPath([]string{"root", "test1", "ghost"}, 1)
		assert.ErrorIs(t, err, domain.ErrMedicineNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = tree.PurchaseByPath([]string{"root", "nope", "ghost"}, 1)
		assert.ErrorIs(t, err, domain.ErrPathNotFound)
	})
}

func TestDispenseMedicine(t *testing.T) {
	t.Parallel()

	tree := newTypicalTree(t)
	addMedicine(t, tree, "paracetamol", 10, "root", "test1")
	path := []string{"root", "test1", "paracetamol"}

	med, err := tree.DispenseByPath(path, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, med.Quantity)

	_, err = tree.DispenseByName("paracetamol", 7)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	med, err = tree.DispenseByName("paracetamol", 6)
	require.NoError(t, err)
	assert.Equal(t, 0, med.Quantity)

	_, err = tree.DispenseByPath(path, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestSetDirectoryThreshold(t *testing.T) {
	t.Parallel()

	tree := newTypicalTree(t)
	_, err := tree.AddDirectory("inner", []string{"root", "test1"})
	require.NoError(t, err)
	addMedicine(t, tree, "a", 1, "root", "test1")
	addMedicine(t, tree, "b", 1, "root", "test1", "inner")
	addMedicine(t, tree, "c", 1, "root", "test2")

	// A per-node override is overwritten, not merged.
	_, err = tree.SetMedicineThreshold([]string{"root", "test1", "inner", "b"}, 99)
	require.NoError(t, err)

	touched, err := tree.SetDirectoryThreshold([]string{"root", "test1"}, 12)
	require.NoError(t, err)
	require.Len(t, touched, 2)
	assert.Equal(t, "a", touched[0].Name)
	assert.Equal(t, "b", touched[1].Name)

	for _, d := range tree.Directories() {
		if len(d.Path) >= 2 && d.Path[1] == "test1" {
			assert.Equal(t, 12, d.Threshold, "directory %v", d.Path)
		}
	}
	for _, m := range tree.Medicines() {
		if m.Path[1] == "test1" {
			assert.Equal(t, 12, m.Threshold, "medicine %s", m.Name)
		} else {
			assert.Equal(t, 0, m.Threshold, "medicine %s outside the subtree", m.Name)
		}
	}

	_, err = tree.SetDirectoryThreshold([]string{"root", "test1"}, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = tree.SetDirectoryThreshold([]string{"root", "zzz"}, 1)
	assert.ErrorIs(t, err, domain.ErrPathNotFound)
}

func TestSetPrice(t *testing.T) {
	t.Parallel()

	tree := newTypicalTree(t)
	addMedicine(t, tree, "a", 1, "root")

	med, err := tree.SetPrice([]string{"root", "a"}, decimal.RequireFromString("2.35"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.35").Equal(med.Price))

	_, err = tree.SetPrice([]string{"root", "a"}, decimal.RequireFromString("-0.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestSiblingNamesStayUnique(t *testing.T) {
	t.Parallel()

	tree := newTypicalTree(t)
	ops := []struct {
		dir  bool
		name string
		path []string
	}{
		{true, "a", []string{"root"}},
		{true, "a", []string{"root"}},
		{false, "m", []string{"root", "a"}},
		{false, "m", []string{"root", "a"}},
		{true, "m", []string{"root", "a"}},
		{true, "b", []string{"root", "a"}},
		{true, "b", []string{"root", "a"}},
		{false, "m", []string{"root", "a", "b"}},
	}
	for _, op := range ops {
		if op.dir {
			_, _ = tree.AddDirectory(op.name, op.path)
		} else {
			_, _ = tree.AddMedicine(NewMedicine{Name: op.name, Path: op.path})
		}
	}

	for _, d := range tree.Directories() {
		assert.Len(t, unique(d.Subdirectories), len(d.Subdirectories), "subdirectories of %v", d.Path)
		assert.Len(t, unique(d.Medicines), len(d.Medicines), "medicines of %v", d.Path)
	}
}

func unique(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
