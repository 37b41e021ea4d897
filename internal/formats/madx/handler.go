// Package madx provides the format handler for MAD-X lattice files.
package madx

import (
	"regexp"
	"strings"

	"github.com/latticemill/latticemill/core/format"
	"github.com/latticemill/latticemill/core/geometry"
	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
	"github.com/latticemill/latticemill/core/reconcile"
)

// Handler implements format.Handler for MAD-X.
type Handler struct{}

// init automatically registers this handler when the package is imported.
func init() {
	format.Register(&Handler{})
}

// Name implements format.Handler.Name.
func (h *Handler) Name() string { return "madx" }

// CanParse implements format.Handler.CanParse.
func (h *Handler) CanParse() bool { return true }

// CanEmit implements format.Handler.CanEmit.
func (h *Handler) CanEmit() bool { return true }

// labelPattern matches a labeled MADX declaration like "q1: QUADRUPOLE".
var labelPattern = regexp.MustCompile(`(?m)^\s*[A-Za-z_][\w.$]*\s*:\s*[A-Za-z_]`)

// Detect implements format.Handler.Detect. MADX statements are
// semicolon-terminated, which separates them from the newline-terminated
// elegant dialect.
func (h *Handler) Detect(text string) *format.DetectResult {
	if !strings.Contains(text, ";") {
		return &format.DetectResult{Detected: false, Reason: "no semicolon-terminated statements"}
	}
	lower := strings.ToLower(text)
	if labelPattern.MatchString(text) ||
		strings.Contains(lower, "sequence") ||
		strings.Contains(lower, "title") {
		return &format.DetectResult{Detected: true, Format: h.Name(), Reason: "madx statement syntax detected"}
	}
	return &format.DetectResult{Detected: false, Reason: "no madx declarations found"}
}

// Parse implements format.Handler.Parse. A SEQUENCE block is converted to
// line form, synthesizing drifts for the gaps between placements.
func (h *Handler) Parse(text string, table *namemap.Table) (*lattice.Lattice, *lattice.Report, error) {
	raw, seq, err := parseMADX(text)
	if err != nil {
		return nil, nil, err
	}

	lat, report := reconcile.Reconcile(raw, table, namemap.FormatMADX)

	if seq != nil {
		children, err := geometry.SequenceToLine(seq.placements, lat.Elements)
		if err != nil {
			return nil, nil, err
		}
		lat.Lattices.Set(seq.name, children)
		if lat.Root == "" {
			lat.Root = seq.name
		}
	}

	return lat, report, nil
}

// Emit implements format.Handler.Emit.
func (h *Handler) Emit(lat *lattice.Lattice, table *namemap.Table) (string, *lattice.Report, error) {
	return emitMADX(lat, table)
}
