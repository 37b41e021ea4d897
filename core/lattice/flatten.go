package lattice

import (
	"github.com/latticemill/latticemill/core/errors"
)

// Flatten expands the named lattice into the ordered list of element names
// it ultimately references, recursing through sub-lattices. Emitters that
// render a single flat layout (absolute-position sequences, pyat rings)
// use this instead of the nested definition table.
//
// A cyclic reference yields a CycleError.
func (l *Lattice) Flatten(root string) ([]string, error) {
	if !l.Lattices.Has(root) {
		return nil, errors.NewNotFound("lattice", root)
	}
	return l.flatten(root, make(map[string]bool))
}

func (l *Lattice) flatten(name string, path map[string]bool) ([]string, error) {
	if path[name] {
		return nil, errors.NewCycle(name)
	}
	path[name] = true
	defer delete(path, name)

	children, _ := l.Lattices.Get(name)
	var out []string
	for _, child := range children {
		if !l.IsLattice(child) {
			out = append(out, child)
			continue
		}
		sub, err := l.flatten(child, path)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}
