// Package geometry converts between the two layout representations of a
// beamline: the absolute-center-position "sequence" form and the
// implicitly ordered "line" form in which gaps are explicit drift
// elements. The two operations are inverses of each other for
// non-overlapping input.
package geometry

import (
	"fmt"

	"github.com/latticemill/latticemill/core/errors"
	"github.com/latticemill/latticemill/core/lattice"
)

// Epsilon is the gap classification tolerance, 1 μm. Gaps smaller than
// this in magnitude are treated as element-to-element contact; it absorbs
// floating-point roundoff from position arithmetic.
const Epsilon = 1e-6

// Placement is one entry of a sequence layout: an element name and its
// absolute center position.
type Placement struct {
	Name     string
	Position float64
}

// SequenceToLine converts an absolute-position sequence into an implicitly
// ordered child list. Positive gaps between consecutive elements become
// synthetic Drift elements named drift_0, drift_1, ... which are inserted
// into the element table. Overlaps beyond Epsilon are fatal.
func SequenceToLine(seq []Placement, elements *lattice.ElementMap) ([]string, error) {
	var children []string
	driftCount := 0
	exit := 0.0 // s position of the exit of the previous element

	for _, p := range seq {
		el, ok := elements.Get(p.Name)
		if !ok {
			return nil, errors.NewNotFound("element", p.Name)
		}
		length := el.Length()
		entrance := p.Position - length/2
		gap := entrance - exit

		switch {
		case gap < Epsilon && gap > -Epsilon:
			// Contact within tolerance, no drift.
			children = append(children, p.Name)
			exit += length

		case gap <= -Epsilon:
			return nil, errors.NewOverlap(p.Name, p.Position)

		default:
			name := nextDriftName(elements, &driftCount)
			drift := lattice.NewElement(lattice.TypeDrift)
			drift.Attrs.Set(lattice.AttrLength, lattice.Number(gap))
			elements.Set(name, drift)
			children = append(children, name, p.Name)
			exit += gap + length
		}
	}

	return children, nil
}

// LineToSequence converts an implicitly ordered child list into an
// absolute-position sequence. Drift elements advance the position but emit
// no placement; they are implicit in sequence form.
func LineToSequence(children []string, elements *lattice.ElementMap) ([]Placement, error) {
	var seq []Placement
	pos := 0.0

	for _, name := range children {
		el, ok := elements.Get(name)
		if !ok {
			return nil, errors.NewNotFound("element", name)
		}
		length := el.Length()
		if el.Type == lattice.TypeDrift {
			pos += length
			continue
		}
		seq = append(seq, Placement{Name: name, Position: pos + length/2})
		pos += length
	}

	return seq, nil
}

// nextDriftName returns the next synthetic drift name, skipping names
// already taken by declared elements.
func nextDriftName(elements *lattice.ElementMap, count *int) string {
	for {
		name := fmt.Sprintf("drift_%d", *count)
		*count++
		if !elements.Has(name) {
			return name
		}
	}
}
