// Package elegant provides the format handler for elegant lattice files.
package elegant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/latticemill/latticemill/core/errors"
	"github.com/latticemill/latticemill/core/format"
	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
	"github.com/latticemill/latticemill/core/reconcile"
)

// Handler implements format.Handler for elegant.
type Handler struct{}

// init automatically registers this handler when the package is imported.
func init() {
	format.Register(&Handler{})
}

// Name implements format.Handler.Name.
func (h *Handler) Name() string { return "elegant" }

// CanParse implements format.Handler.CanParse.
func (h *Handler) CanParse() bool { return true }

// CanEmit implements format.Handler.CanEmit.
func (h *Handler) CanEmit() bool { return true }

// Detect implements format.Handler.Detect. elegant statements are
// newline-terminated; a file whose statements end in semicolons is the
// MADX dialect instead.
func (h *Handler) Detect(text string) *format.DetectResult {
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		return &format.DetectResult{Detected: false, Reason: "looks like JSON"}
	}
	sawStatement := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if i := commentStart(trimmed); i >= 0 {
			trimmed = strings.TrimSpace(trimmed[:i])
		}
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			return &format.DetectResult{Detected: false, Reason: "semicolon-terminated statements"}
		}
		sawStatement = true
	}
	if !sawStatement {
		return &format.DetectResult{Detected: false, Reason: "no statements found"}
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "line") || strings.Contains(lower, ":") {
		return &format.DetectResult{Detected: true, Format: h.Name(), Reason: "elegant statement syntax detected"}
	}
	return &format.DetectResult{Detected: false, Reason: "no elegant declarations found"}
}

// Parse implements format.Handler.Parse.
func (h *Handler) Parse(text string, table *namemap.Table) (*lattice.Lattice, *lattice.Report, error) {
	raw, err := parseElegant(text)
	if err != nil {
		return nil, nil, err
	}
	lat, report := reconcile.Reconcile(raw, table, namemap.FormatElegant)
	return lat, report, nil
}

// Emit implements format.Handler.Emit. The title survives as a marked
// comment on the first line; LINE definitions are emitted in dependency
// order, unused ones dropped with a diagnostic.
func (h *Handler) Emit(lat *lattice.Lattice, table *namemap.Table) (string, *lattice.Report, error) {
	report := lattice.NewReport()
	var b strings.Builder

	if lat.Title != "" {
		fmt.Fprintf(&b, "%s %s\n", titlePrefix, lat.Title)
	}

	for _, name := range lat.Elements.Keys() {
		el, _ := lat.Elements.Get(name)
		line, err := renderElement(name, el, table)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(line)
	}

	if lat.Lattices.Len() > 0 {
		sorted, sortReport, err := lattice.SortLattices(lat, "", false)
		if err != nil {
			return "", nil, err
		}
		report.Merge(sortReport)
		for _, name := range sorted.Keys() {
			children, _ := sorted.Get(name)
			fmt.Fprintf(&b, "%s: LINE=(%s)\n", name, strings.Join(children, ", "))
		}
	}

	if lat.Root != "" {
		fmt.Fprintf(&b, "USE, %s\n", lat.Root)
	}
	b.WriteString("RETURN\n")

	return b.String(), report, nil
}

// renderElement renders one element declaration in the elegant vocabulary.
func renderElement(name string, el *lattice.Element, table *namemap.Table) (string, error) {
	foreignType, ok := table.TypeToForeign(namemap.FormatElegant, string(el.Type))
	if !ok {
		return "", errors.NewMissingMapping("type", string(el.Type), string(namemap.FormatElegant))
	}

	parts := []string{fmt.Sprintf("%s: %s", name, foreignType)}
	for _, attr := range el.Attrs.Keys() {
		foreignAttr, ok := table.AttrToForeign(namemap.FormatElegant, string(attr))
		if !ok {
			return "", errors.NewMissingMapping("attribute", string(attr), string(namemap.FormatElegant))
		}
		v, _ := el.Attrs.Get(attr)
		parts = append(parts, fmt.Sprintf("%s=%s", foreignAttr, attrText(v)))
	}
	return strings.Join(parts, ", ") + "\n", nil
}

func attrText(v lattice.Value) string {
	if v.IsNumber() {
		return v.Text()
	}
	return strconv.Quote(v.Str())
}
