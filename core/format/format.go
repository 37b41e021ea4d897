// Package format defines the handler interface implemented by every
// lattice file format and the process-wide registry the conversion driver
// dispatches through.
//
// Handlers register themselves from init() in their own packages;
// internal/embedded imports them all so that a blank import of one package
// wires up the full format set.
package format

import (
	"sort"

	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
)

// DetectResult reports whether a handler recognizes a piece of text.
type DetectResult struct {
	// Detected is true if the text looks like this handler's format.
	Detected bool

	// Format is the handler name, set when detected.
	Format string

	// Reason explains the decision.
	Reason string
}

// Handler converts between one foreign lattice format and the canonical
// representation. Implementations must be safe for concurrent use; they
// receive all state (text, lattice, name map) as arguments.
type Handler interface {
	// Name returns the format identifier used for dispatch (e.g. "madx").
	Name() string

	// CanParse returns true if the handler can read its format.
	CanParse() bool

	// CanEmit returns true if the handler can write its format.
	CanEmit() bool

	// Detect checks whether the text looks like this handler's format.
	Detect(text string) *DetectResult

	// Parse converts foreign text into a canonical lattice. Recoverable
	// mapping problems are reported as diagnostics, never as errors.
	Parse(text string, table *namemap.Table) (*lattice.Lattice, *lattice.Report, error)

	// Emit renders a canonical lattice as foreign text. A canonical name
	// with no translation in the target vocabulary is a fatal error.
	Emit(lat *lattice.Lattice, table *namemap.Table) (string, *lattice.Report, error)
}

// registry holds all registered format handlers by name.
var registry = make(map[string]Handler)

// Register adds a handler to the registry. Later registrations with the
// same name replace earlier ones.
func Register(h Handler) {
	if h != nil && h.Name() != "" {
		registry[h.Name()] = h
	}
}

// Get returns the handler for a format identifier.
func Get(name string) (Handler, bool) {
	h, ok := registry[name]
	return h, ok
}

// Has checks if a handler with the given name exists.
func Has(name string) bool {
	_, ok := registry[name]
	return ok
}

// List returns all registered handlers sorted by name.
func List() []Handler {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Handler, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name])
	}
	return out
}

// ClearRegistry removes all registered handlers (for testing).
func ClearRegistry() {
	registry = make(map[string]Handler)
}
