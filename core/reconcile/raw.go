package reconcile

import (
	"github.com/latticemill/latticemill/core/lattice"
)

// RawAttr is one (foreign attribute, value) pair of a raw element, in
// declaration order.
type RawAttr struct {
	Name  string
	Value lattice.Value
}

// RawElement is an element declaration as a foreign-format parser produced
// it: the declared foreign type (which may name another element, an
// "element alias") and its untranslated attributes.
type RawElement struct {
	Name  string
	Type  string
	Attrs []RawAttr
}

// RawRecord is the untranslated output of a foreign-format parser. The
// reconciler assumes this shape without re-validating it.
type RawRecord struct {
	// Title is the machine title, if the file declared one.
	Title string

	// Root names the top-level lattice, if the file declared one (e.g. a
	// USE statement). When empty, the last declared lattice becomes root.
	Root string

	// Elements holds element declarations in file order.
	Elements []RawElement

	// Lattices holds line definitions in file order.
	Lattices *lattice.ChildMap

	// Commands holds directives the canonical model carries opaquely.
	Commands []lattice.Command

	index map[string]int
}

// NewRawRecord creates an empty raw record.
func NewRawRecord() *RawRecord {
	return &RawRecord{
		Lattices: lattice.NewChildMap(),
		index:    make(map[string]int),
	}
}

// AddElement appends an element declaration. A repeated name replaces the
// earlier declaration in place, matching how lattice file formats treat
// redefinition.
func (r *RawRecord) AddElement(name, typ string, attrs []RawAttr) {
	if i, ok := r.index[name]; ok {
		r.Elements[i] = RawElement{Name: name, Type: typ, Attrs: attrs}
		return
	}
	r.index[name] = len(r.Elements)
	r.Elements = append(r.Elements, RawElement{Name: name, Type: typ, Attrs: attrs})
}

// Element returns the declaration of the named element.
func (r *RawRecord) Element(name string) (RawElement, bool) {
	i, ok := r.index[name]
	if !ok {
		return RawElement{}, false
	}
	return r.Elements[i], true
}
