package inventory

import (
	"fmt"
	"strings"

	"github.com/phrazzld/clinicdesk/internal/domain"
)

// resolveDirectory returns the index of the directory named by path.
// The first segment must name the root.
func (t *Tree) resolveDirectory(path []string) (int, error) {
	if len(path) == 0 || path[0] != t.directories[0].name {
		return 0, fmt.Errorf("%w: %s", domain.ErrPathNotFound, strings.Join(path, "/"))
	}
	cur := 0
	for i, segment := range path[1:] {
		next, ok := t.childDirectory(cur, segment)
		if !ok {
			return 0, fmt.Errorf("%w: %q missing in %s",
				domain.ErrPathNotFound, segment, strings.Join(path[:i+1], "/"))
		}
		cur = next
	}
	return cur, nil
}

// resolveMedicine returns the index of the medicine at path, whose last
// segment is the medicine name.
func (t *Tree) resolveMedicine(path []string) (int, error) {
	if len(path) < 2 {
		return 0, fmt.Errorf("%w: %s", domain.ErrMedicineNotFound, strings.Join(path, "/"))
	}
	dir, err := t.resolveDirectory(path[:len(path)-1])
	if err != nil {
		return 0, err
	}
	name := path[len(path)-1]
	idx, ok := t.childMedicine(dir, name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrMedicineNotFound, strings.Join(path, "/"))
	}
	return idx, nil
}

func (t *Tree) resolveName(name string) (int, error) {
	idx, ok := t.findByName(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrMedicineNotFound, name)
	}
	return idx, nil
}

func (t *Tree) childDirectory(dir int, name string) (int, bool) {
	for _, c := range t.directories[dir].children {
		if t.directories[c].name == name {
			return c, true
		}
	}
	return 0, false
}

func (t *Tree) childMedicine(dir int, name string) (int, bool) {
	for _, m := range t.directories[dir].medicines {
		if t.medicines[m].name == name {
			return m, true
		}
	}
	return 0, false
}

func (t *Tree) findByName(name string) (int, bool) {
	found, ok := 0, false
	t.walkUntil(0, func(d int) bool {
		if idx, hit := t.childMedicine(d, name); hit {
			found, ok = idx, true
			return true
		}
		return false
	})
	return found, ok
}

// walk visits dir and all of its descendants in pre-order.
func (t *Tree) walk(dir int, visit func(int)) {
	t.walkUntil(dir, func(d int) bool {
		visit(d)
		return false
	})
}

// walkUntil is walk with early exit: it stops as soon as visit returns true.
func (t *Tree) walkUntil(dir int, visit func(int) bool) bool {
	if visit(dir) {
		return true
	}
	for _, c := range t.directories[dir].children {
		if t.walkUntil(c, visit) {
			return true
		}
	}
	return false
}

// pathOf rebuilds a directory's path by following parent indices.
func (t *Tree) pathOf(dir int) []string {
	var rev []string
	for d := dir; d != noParent; d = t.directories[d].parent {
		rev = append(rev, t.directories[d].name)
	}
	path := make([]string, len(rev))
	for i, name := range rev {
		path[len(rev)-1-i] = name
	}
	return path
}

func (t *Tree) directorySnapshot(dir int) domain.Directory {
	node := t.directories[dir]
	subdirs := make([]string, 0, len(node.children))
	for _, c := range node.children {
		subdirs = append(subdirs, t.directories[c].name)
	}
	meds := make([]string, 0, len(node.medicines))
	for _, m := range node.medicines {
		meds = append(meds, t.medicines[m].name)
	}
	return domain.Directory{
		Path:           t.pathOf(dir),
		Threshold:      node.threshold,
		Subdirectories: subdirs,
		Medicines:      meds,
	}
}

func (t *Tree) medicineSnapshot(idx int) domain.Medicine {
	node := t.medicines[idx]
	return domain.Medicine{
		ID:        node.id,
		Name:      node.name,
		Path:      t.pathOf(node.directory),
		Quantity:  node.quantity,
		Price:     node.price,
		Threshold: node.threshold,
	}
}
