// Package latticejson provides the handler for the canonical JSON
// interchange format. Parsing and emission are direct (de)serializations
// of the canonical model; no vocabulary translation is involved.
package latticejson

import (
	"encoding/json"
	"strings"

	"github.com/latticemill/latticemill/core/errors"
	"github.com/latticemill/latticemill/core/format"
	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
)

// Handler implements format.Handler for the JSON interchange format.
type Handler struct{}

// init automatically registers this handler when the package is imported.
func init() {
	format.Register(&Handler{})
}

// Name implements format.Handler.Name.
func (h *Handler) Name() string { return "json" }

// CanParse implements format.Handler.CanParse.
func (h *Handler) CanParse() bool { return true }

// CanEmit implements format.Handler.CanEmit.
func (h *Handler) CanEmit() bool { return true }

// Detect implements format.Handler.Detect.
func (h *Handler) Detect(text string) *format.DetectResult {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return &format.DetectResult{Detected: false, Reason: "not a JSON object"}
	}
	var probe struct {
		Elements json.RawMessage `json:"elements"`
		Lattices json.RawMessage `json:"lattices"`
	}
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return &format.DetectResult{Detected: false, Reason: "not valid JSON"}
	}
	if probe.Elements == nil && probe.Lattices == nil {
		return &format.DetectResult{Detected: false, Reason: "JSON without elements or lattices"}
	}
	return &format.DetectResult{Detected: true, Format: h.Name(), Reason: "lattice JSON detected"}
}

// Parse implements format.Handler.Parse. The name map is unused: the JSON
// form already speaks the canonical vocabulary.
func (h *Handler) Parse(text string, _ *namemap.Table) (*lattice.Lattice, *lattice.Report, error) {
	lat := lattice.New()
	if err := json.Unmarshal([]byte(text), lat); err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse lattice JSON")
	}
	if lat.Elements == nil {
		lat.Elements = lattice.NewElementMap()
	}
	if lat.Lattices == nil {
		lat.Lattices = lattice.NewChildMap()
	}
	return lat, lattice.NewReport(), nil
}

// Emit implements format.Handler.Emit. Insertion order of the element and
// lattice tables is preserved in the output object.
func (h *Handler) Emit(lat *lattice.Lattice, _ *namemap.Table) (string, *lattice.Report, error) {
	data, err := json.MarshalIndent(lat, "", "  ")
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to serialize lattice JSON")
	}
	return string(data) + "\n", lattice.NewReport(), nil
}
