package lattice

import (
	"fmt"

	"github.com/latticemill/latticemill/core/errors"
)

// Validate checks the structural invariants of a canonical lattice and
// returns all violations. A nil slice means the lattice is well-formed.
//
// Checked invariants:
//   - the root names an existing lattice definition (when any exist)
//   - every child referenced by a lattice resolves to an element or lattice
//   - every element carries a valid canonical type and attribute names
//   - no name is defined both as an element and as a lattice
func Validate(lat *Lattice) []error {
	var errs []error

	if lat.Lattices.Len() > 0 && !lat.Lattices.Has(lat.Root) {
		errs = append(errs, errors.NewValidation("root",
			fmt.Sprintf("root %q is not a lattice definition", lat.Root)))
	}

	for _, name := range lat.Elements.Keys() {
		el, _ := lat.Elements.Get(name)
		path := fmt.Sprintf("elements[%s]", name)

		if lat.Lattices.Has(name) {
			errs = append(errs, errors.NewValidation(path,
				"name is defined both as an element and as a lattice"))
		}
		if !el.Type.IsValid() {
			errs = append(errs, errors.NewValidation(path,
				fmt.Sprintf("invalid element type %q", el.Type)))
		}
		if el.Attrs != nil {
			for _, attr := range el.Attrs.Keys() {
				if !attr.IsValid() {
					errs = append(errs, errors.NewValidation(path,
						fmt.Sprintf("invalid attribute name %q", attr)))
				}
			}
		}
	}

	for _, name := range lat.Lattices.Keys() {
		children, _ := lat.Lattices.Get(name)
		for i, child := range children {
			if !lat.Elements.Has(child) && !lat.Lattices.Has(child) {
				errs = append(errs, errors.NewValidation(
					fmt.Sprintf("lattices[%s][%d]", name, i),
					fmt.Sprintf("child %q is neither an element nor a lattice", child)))
			}
		}
	}

	return errs
}
