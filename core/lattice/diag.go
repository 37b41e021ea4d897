package lattice

import "fmt"

// DiagKind classifies a recoverable conversion diagnostic.
type DiagKind string

// Diagnostic kind constants.
const (
	// DiagUnknownElementType records a foreign element type with no
	// canonical mapping. The element falls back to Drift.
	DiagUnknownElementType DiagKind = "UnknownElementType"

	// DiagUnknownAttribute records a foreign attribute with no canonical
	// mapping. The attribute is dropped.
	DiagUnknownAttribute DiagKind = "UnknownAttribute"

	// DiagUnusedLattice records a lattice definition unreachable from the
	// root. The definition is dropped unless explicitly retained.
	DiagUnusedLattice DiagKind = "UnusedLattice"
)

// validDiagKinds is the set of valid diagnostic kinds.
var validDiagKinds = map[DiagKind]bool{
	DiagUnknownElementType: true,
	DiagUnknownAttribute:   true,
	DiagUnusedLattice:      true,
}

// IsValid returns true if the diagnostic kind is valid.
func (k DiagKind) IsValid() bool {
	return validDiagKinds[k]
}

// Diagnostic describes one recoverable issue found during a conversion.
// Diagnostics never abort the conversion that produced them.
type Diagnostic struct {
	// Kind classifies the diagnostic.
	Kind DiagKind `json:"kind"`

	// Name is the element or lattice the diagnostic refers to.
	Name string `json:"name"`

	// Symbol is the unmapped foreign symbol, if any.
	Symbol string `json:"symbol,omitempty"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

// Report collects the diagnostics of a conversion. Operations return their
// report explicitly so callers can inspect, log, or ignore it; nothing is
// delivered through an ambient warning channel.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends a diagnostic to the report.
func (r *Report) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// AddUnknownType records an element whose foreign type has no canonical mapping.
func (r *Report) AddUnknownType(element, foreignType string) {
	r.Add(Diagnostic{
		Kind:    DiagUnknownElementType,
		Name:    element,
		Symbol:  foreignType,
		Message: fmt.Sprintf("element %q has unknown type %q, falling back to Drift", element, foreignType),
	})
}

// AddUnknownAttr records an attribute with no canonical mapping.
func (r *Report) AddUnknownAttr(element, foreignAttr string) {
	r.Add(Diagnostic{
		Kind:    DiagUnknownAttribute,
		Name:    element,
		Symbol:  foreignAttr,
		Message: fmt.Sprintf("element %q has unknown attribute %q, dropping it", element, foreignAttr),
	})
}

// AddUnusedLattice records a lattice definition unreachable from the root.
func (r *Report) AddUnusedLattice(name string) {
	r.Add(Diagnostic{
		Kind:    DiagUnusedLattice,
		Name:    name,
		Message: fmt.Sprintf("discarding unused lattice %q", name),
	})
}

// HasDiagnostics returns true if the report contains any diagnostics.
func (r *Report) HasDiagnostics() bool {
	return len(r.Diagnostics) > 0
}

// Count returns the number of diagnostics of the given kind.
func (r *Report) Count(kind DiagKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Merge appends all diagnostics of another report.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}
