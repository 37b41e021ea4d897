// Package pyat provides the emit-only format handler that renders a
// canonical lattice as a Python script building a pyat (Accelerator
// Toolbox) lattice. There is no parser: pyat lattices are Python object
// graphs, not a text format this converter reads back.
package pyat

import (
	"fmt"
	"strings"

	"github.com/latticemill/latticemill/core/errors"
	"github.com/latticemill/latticemill/core/format"
	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
	"github.com/latticemill/latticemill/core/reconcile"
)

// Handler implements format.Handler for pyat script generation.
type Handler struct{}

// init automatically registers this handler when the package is imported.
func init() {
	format.Register(&Handler{})
}

// Name implements format.Handler.Name.
func (h *Handler) Name() string { return "pyat" }

// CanParse implements format.Handler.CanParse.
func (h *Handler) CanParse() bool { return false }

// CanEmit implements format.Handler.CanEmit.
func (h *Handler) CanEmit() bool { return true }

// Detect implements format.Handler.Detect.
func (h *Handler) Detect(text string) *format.DetectResult {
	if strings.Contains(text, "import at") {
		return &format.DetectResult{Detected: true, Format: h.Name(), Reason: "pyat import detected"}
	}
	return &format.DetectResult{Detected: false, Reason: "no pyat import"}
}

// Parse implements format.Handler.Parse. pyat is emit-only.
func (h *Handler) Parse(_ string, _ *namemap.Table) (*lattice.Lattice, *lattice.Report, error) {
	return nil, nil, &errors.UnsupportedFormatError{Format: h.Name(), Operation: "parse"}
}

// Emit implements format.Handler.Emit. Plane-specific steerers are merged
// into combined correctors first, since pyat has a single corrector class.
// The emitted script assigns every element to a Python variable, builds
// each lattice definition as a list, and wraps the root in at.Lattice.
func (h *Handler) Emit(lat *lattice.Lattice, table *namemap.Table) (string, *lattice.Report, error) {
	report := lattice.NewReport()

	merged := cloneLattice(lat)
	reconcile.MergeSteerers(merged)

	names := newNamer()
	var b strings.Builder

	if merged.Title != "" {
		fmt.Fprintf(&b, "\"\"\"%s\"\"\"\n\n", merged.Title)
	}
	b.WriteString("import at\n\n")

	for _, name := range merged.Elements.Keys() {
		el, _ := merged.Elements.Get(name)
		line, err := renderElement(names.assign(name), name, el, table)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(line)
	}

	rootVar := ""
	if merged.Lattices.Len() > 0 {
		sorted, sortReport, err := lattice.SortLattices(merged, "", false)
		if err != nil {
			return "", nil, err
		}
		report.Merge(sortReport)

		b.WriteString("\n")
		for _, name := range sorted.Keys() {
			children, _ := sorted.Get(name)
			items := make([]string, len(children))
			for i, child := range children {
				// Sub-lattice references unpack so the list stays flat.
				if merged.IsLattice(child) {
					items[i] = "*" + names.lookup(child)
				} else {
					items[i] = names.lookup(child)
				}
			}
			fmt.Fprintf(&b, "%s = [%s]\n", names.assign(name), strings.Join(items, ", "))
		}
		rootVar = names.lookup(merged.Root)
	}

	if rootVar != "" {
		fmt.Fprintf(&b, "\nlattice = at.Lattice(%s, name=%s, energy=0.0)\n",
			rootVar, pyString(merged.Root))
	}

	return b.String(), report, nil
}

// renderElement renders one element constructor call. The family name is
// positional; every attribute is a keyword argument in the pyat
// vocabulary.
func renderElement(pyName, name string, el *lattice.Element, table *namemap.Table) (string, error) {
	foreignType, ok := table.TypeToForeign(namemap.FormatPyAT, string(el.Type))
	if !ok {
		return "", errors.NewMissingMapping("type", string(el.Type), string(namemap.FormatPyAT))
	}

	args := []string{pyString(name)}
	for _, attr := range el.Attrs.Keys() {
		foreignAttr, ok := table.AttrToForeign(namemap.FormatPyAT, string(attr))
		if !ok {
			return "", errors.NewMissingMapping("attribute", string(attr), string(namemap.FormatPyAT))
		}
		v, _ := el.Attrs.Get(attr)
		args = append(args, fmt.Sprintf("%s=%s", foreignAttr, pyValue(v)))
	}
	return fmt.Sprintf("%s = at.%s(%s)\n", pyName, foreignType, strings.Join(args, ", ")), nil
}

// cloneLattice deep-copies the element table so steerer merging never
// mutates the caller's lattice.
func cloneLattice(lat *lattice.Lattice) *lattice.Lattice {
	clone := lattice.New()
	clone.Title = lat.Title
	clone.Root = lat.Root
	clone.Commands = append(clone.Commands, lat.Commands...)
	for _, name := range lat.Elements.Keys() {
		el, _ := lat.Elements.Get(name)
		clone.Elements.Set(name, el.Clone())
	}
	for _, name := range lat.Lattices.Keys() {
		children, _ := lat.Lattices.Get(name)
		clone.Lattices.Set(name, append([]string(nil), children...))
	}
	return clone
}

// pyReserved holds identifiers the generated script uses itself.
var pyReserved = map[string]bool{
	"at":      true,
	"import":  true,
	"lattice": true,
}

// namer maps lattice names onto unique valid Python identifiers.
type namer struct {
	byName map[string]string
	taken  map[string]bool
}

func newNamer() *namer {
	return &namer{
		byName: make(map[string]string),
		taken:  make(map[string]bool),
	}
}

// assign returns a fresh identifier for a lattice name, remembering it for
// later lookups.
func (n *namer) assign(name string) string {
	py := sanitizeIdent(name)
	for pyReserved[py] || n.taken[py] {
		py += "_"
	}
	n.taken[py] = true
	n.byName[name] = py
	return py
}

// lookup returns the identifier previously assigned to a lattice name.
func (n *namer) lookup(name string) string {
	if py, ok := n.byName[name]; ok {
		return py
	}
	return sanitizeIdent(name)
}

// sanitizeIdent rewrites a lattice name into a valid Python identifier.
func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// pyValue renders a canonical scalar as a Python literal.
func pyValue(v lattice.Value) string {
	if v.IsNumber() {
		return v.Text()
	}
	return pyString(v.Str())
}

// pyString renders a single-quoted Python string literal.
func pyString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
