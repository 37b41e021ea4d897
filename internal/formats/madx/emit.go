package madx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/latticemill/latticemill/core/errors"
	"github.com/latticemill/latticemill/core/geometry"
	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
)

// emit.go - MADX renderer.
//
// Lattices that carry a sequence command are rendered back as an
// absolute-position SEQUENCE block; everything else uses nested LINE
// definitions in dependency order.

func emitMADX(lat *lattice.Lattice, table *namemap.Table) (string, *lattice.Report, error) {
	report := lattice.NewReport()
	var b strings.Builder

	if lat.Title != "" {
		fmt.Fprintf(&b, "TITLE, %q;\n", lat.Title)
	}

	for _, name := range lat.Elements.Keys() {
		el, _ := lat.Elements.Get(name)
		line, err := renderElement(name, el, table)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(line)
	}

	if cmd := lat.SequenceCommand(); cmd != nil {
		if err := renderSequence(&b, lat, cmd); err != nil {
			return "", nil, err
		}
	} else if lat.Lattices.Len() > 0 {
		sorted, sortReport, err := lattice.SortLattices(lat, "", false)
		if err != nil {
			return "", nil, err
		}
		report.Merge(sortReport)
		for _, name := range sorted.Keys() {
			children, _ := sorted.Get(name)
			fmt.Fprintf(&b, "%s: LINE=(%s);\n", name, strings.Join(children, ", "))
		}
	}

	if lat.Root != "" {
		fmt.Fprintf(&b, "USE, SEQUENCE=%s;\n", lat.Root)
	}

	return b.String(), report, nil
}

// renderElement renders one element declaration, translating the type and
// every attribute into the MADX vocabulary. A canonical name with no MADX
// spelling is fatal.
func renderElement(name string, el *lattice.Element, table *namemap.Table) (string, error) {
	foreignType, ok := table.TypeToForeign(namemap.FormatMADX, string(el.Type))
	if !ok {
		return "", errors.NewMissingMapping("type", string(el.Type), string(namemap.FormatMADX))
	}

	parts := []string{fmt.Sprintf("%s: %s", name, foreignType)}
	for _, attr := range el.Attrs.Keys() {
		foreignAttr, ok := table.AttrToForeign(namemap.FormatMADX, string(attr))
		if !ok {
			return "", errors.NewMissingMapping("attribute", string(attr), string(namemap.FormatMADX))
		}
		v, _ := el.Attrs.Get(attr)
		parts = append(parts, fmt.Sprintf("%s=%s", foreignAttr, attrText(v)))
	}
	return strings.Join(parts, ", ") + ";\n", nil
}

// renderSequence renders the root lattice as a SEQUENCE block. The stored
// sequence command supplies the opening directive; drifts are implicit in
// sequence form and emit no placement.
func renderSequence(b *strings.Builder, lat *lattice.Lattice, cmd *lattice.Command) error {
	b.WriteString(cmd.Name + ": SEQUENCE")
	for _, a := range cmd.Attrs {
		fmt.Fprintf(b, ", %s=%s", strings.ToUpper(a.Name), a.Value.Text())
	}
	b.WriteString(";\n")

	flat, err := lat.Flatten(lat.Root)
	if err != nil {
		return err
	}
	placements, err := geometry.LineToSequence(flat, lat.Elements)
	if err != nil {
		return err
	}
	for _, p := range placements {
		fmt.Fprintf(b, "  %s, AT=%s;\n", p.Name, formatNumber(p.Position))
	}
	b.WriteString("ENDSEQUENCE;\n")
	return nil
}

func attrText(v lattice.Value) string {
	if v.IsNumber() {
		return v.Text()
	}
	return strconv.Quote(v.Str())
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
