package lattice

import (
	"github.com/latticemill/latticemill/core/errors"
)

// sortColor is the three-color marking state of a lattice during the
// dependency traversal.
type sortColor int

const (
	colorWhite sortColor = iota // not yet visited
	colorGray                   // on the current traversal path
	colorBlack                  // emitted
)

// SortLattices orders the lattice definitions so that every definition
// appears after all lattice definitions it references, starting from root
// (or lat.Root when root is empty). Emitters rely on this order to print
// dependencies before the definitions that use them.
//
// Lattices unreachable from the root are appended in their original
// declaration order when keepUnused is true, so no definition is silently
// lost; otherwise each produces an UnusedLattice diagnostic and is omitted.
//
// A cyclic reference yields a CycleError instead of unbounded recursion.
func SortLattices(lat *Lattice, root string, keepUnused bool) (*ChildMap, *Report, error) {
	if root == "" {
		root = lat.Root
	}
	if !lat.Lattices.Has(root) {
		return nil, nil, errors.NewNotFound("lattice", root)
	}

	sorted := NewChildMap()
	report := NewReport()
	colors := make(map[string]sortColor, lat.Lattices.Len())

	var visit func(name string) error
	visit = func(name string) error {
		colors[name] = colorGray
		children, _ := lat.Lattices.Get(name)
		for _, child := range children {
			if !lat.Lattices.Has(child) {
				continue // elements are leaves
			}
			switch colors[child] {
			case colorWhite:
				if err := visit(child); err != nil {
					return err
				}
			case colorGray:
				return errors.NewCycle(child)
			}
		}
		colors[name] = colorBlack
		sorted.Set(name, children)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, nil, err
	}

	for _, name := range lat.Lattices.Keys() {
		if colors[name] != colorWhite {
			continue
		}
		if keepUnused {
			if err := visit(name); err != nil {
				return nil, nil, err
			}
		} else {
			report.AddUnusedLattice(name)
		}
	}

	return sorted, report, nil
}
