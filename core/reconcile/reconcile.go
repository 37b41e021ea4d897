// Package reconcile maps raw foreign-format records onto the canonical
// lattice representation: element-alias resolution, type and attribute
// translation through the name map, and fallback handling for symbols the
// map does not know.
package reconcile

import (
	"strings"

	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
)

// Reconcile translates a raw foreign-format record into a canonical
// lattice using the given format's vocabulary tables.
//
// Unmappable symbols never abort the conversion: an unknown element type
// falls back to Drift and an unknown attribute is dropped, each with a
// diagnostic in the returned report. The raw record is not mutated; alias
// resolution works on a copy of the attribute lists.
func Reconcile(raw *RawRecord, table *namemap.Table, format namemap.Format) (*lattice.Lattice, *lattice.Report) {
	lat := lattice.New()
	report := lattice.NewReport()

	lat.Title = raw.Title
	lat.Commands = append(lat.Commands, raw.Commands...)

	for _, re := range raw.Elements {
		foreignType, attrs := resolveAlias(raw, re)

		canonical, ok := table.TypeFromForeign(format, foreignType)
		if !ok {
			report.AddUnknownType(re.Name, foreignType)
			lat.Elements.Set(re.Name, driftFallback(attrs))
			continue
		}

		el := lattice.NewElement(lattice.ElementType(canonical))
		for _, a := range attrs {
			canonicalAttr, ok := table.AttrFromForeign(format, a.Name)
			if !ok {
				report.AddUnknownAttr(re.Name, a.Name)
				continue
			}
			el.Attrs.Set(lattice.AttrName(canonicalAttr), a.Value)
		}
		// Several formats permit attribute-less declarations (markers);
		// the canonical form always carries a length.
		if len(attrs) == 0 {
			el.Attrs.Set(lattice.AttrLength, lattice.Number(0))
		}
		lat.Elements.Set(re.Name, el)
	}

	for _, name := range raw.Lattices.Keys() {
		children, _ := raw.Lattices.Get(name)
		lat.Lattices.Set(name, children)
	}

	lat.Root = raw.Root
	if lat.Root == "" {
		if last, ok := lat.Lattices.LastKey(); ok {
			lat.Root = last
		}
	}

	return lat, report
}

// resolveAlias resolves an element whose declared type names another
// declared element. The chain is followed transitively; the referencing
// element's attributes take precedence over the referenced element's on
// key collision. A cycle in the chain stops the walk at the first repeated
// name, leaving the remaining type to fail translation normally.
func resolveAlias(raw *RawRecord, re RawElement) (string, []RawAttr) {
	foreignType := re.Type
	attrs := re.Attrs

	seen := map[string]bool{re.Name: true}
	for {
		target, ok := raw.Element(foreignType)
		if !ok || seen[target.Name] {
			break
		}
		seen[target.Name] = true
		attrs = mergeAttrs(target.Attrs, attrs)
		foreignType = target.Type
	}

	return foreignType, attrs
}

// mergeAttrs layers overlay attributes on top of base: base order is kept,
// overlay values win on collision, overlay-only keys follow in overlay
// order. Neither input slice is mutated.
func mergeAttrs(base, overlay []RawAttr) []RawAttr {
	if len(base) == 0 {
		return overlay
	}

	overlayIdx := make(map[string]int, len(overlay))
	for i, a := range overlay {
		overlayIdx[a.Name] = i
	}

	merged := make([]RawAttr, 0, len(base)+len(overlay))
	inBase := make(map[string]bool, len(base))
	for _, a := range base {
		inBase[a.Name] = true
		if i, ok := overlayIdx[a.Name]; ok {
			merged = append(merged, overlay[i])
		} else {
			merged = append(merged, a)
		}
	}
	for _, a := range overlay {
		if !inBase[a.Name] {
			merged = append(merged, a)
		}
	}
	return merged
}

// driftFallback builds the Drift stand-in for an element with an unknown
// foreign type: length taken from the foreign L attribute when present,
// otherwise 0. No other attribute survives.
func driftFallback(attrs []RawAttr) *lattice.Element {
	el := lattice.NewElement(lattice.TypeDrift)
	length := lattice.Number(0)
	for _, a := range attrs {
		if strings.EqualFold(a.Name, "l") {
			length = a.Value
			break
		}
	}
	el.Attrs.Set(lattice.AttrLength, length)
	return el
}
