// Package convert is the driver surface of the converter: it loads a
// lattice from text in any parseable format and saves it as text in any
// emittable format, dispatching through the format handler registry.
package convert

import (
	stderrors "errors"

	"github.com/latticemill/latticemill/core/errors"
	"github.com/latticemill/latticemill/core/format"
	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
)

// Converter performs conversions against one vocabulary table. The table
// is read-only after construction, so a Converter is safe for concurrent
// use.
type Converter struct {
	Table *namemap.Table
}

// New creates a Converter using the given vocabulary table.
func New(table *namemap.Table) *Converter {
	return &Converter{Table: table}
}

// Default creates a Converter using the bundled name map.
func Default() (*Converter, error) {
	table, err := namemap.Default()
	if err != nil {
		return nil, err
	}
	return New(table), nil
}

// LoadString converts text in the named input format into a canonical
// lattice. When validate is true the structural invariants of the result
// are checked and violations are returned as one joined error.
func (c *Converter) LoadString(text, inputFormat string, validate bool) (*lattice.Lattice, *lattice.Report, error) {
	h, ok := format.Get(inputFormat)
	if !ok {
		return nil, nil, errors.NewUnsupportedFormat(inputFormat)
	}
	if !h.CanParse() {
		return nil, nil, &errors.UnsupportedFormatError{Format: inputFormat, Operation: "parse"}
	}

	lat, report, err := h.Parse(text, c.Table)
	if err != nil {
		return nil, nil, err
	}

	if validate {
		if errs := lattice.Validate(lat); len(errs) > 0 {
			return nil, nil, stderrors.Join(errs...)
		}
	}
	return lat, report, nil
}

// SaveString renders a canonical lattice as text in the named output format.
func (c *Converter) SaveString(lat *lattice.Lattice, outputFormat string) (string, *lattice.Report, error) {
	h, ok := format.Get(outputFormat)
	if !ok {
		return "", nil, errors.NewUnsupportedFormat(outputFormat)
	}
	if !h.CanEmit() {
		return "", nil, &errors.UnsupportedFormatError{Format: outputFormat, Operation: "emit"}
	}
	return h.Emit(lat, c.Table)
}

// Detect runs every registered handler's detector over the text and
// returns the name of the first matching format, in registry order.
func (c *Converter) Detect(text string) (string, bool) {
	for _, h := range format.List() {
		if res := h.Detect(text); res != nil && res.Detected {
			return h.Name(), true
		}
	}
	return "", false
}

// LoadString converts using the bundled name map.
func LoadString(text, inputFormat string, validate bool) (*lattice.Lattice, *lattice.Report, error) {
	c, err := Default()
	if err != nil {
		return nil, nil, err
	}
	return c.LoadString(text, inputFormat, validate)
}

// SaveString renders using the bundled name map.
func SaveString(lat *lattice.Lattice, outputFormat string) (string, *lattice.Report, error) {
	c, err := Default()
	if err != nil {
		return "", nil, err
	}
	return c.SaveString(lat, outputFormat)
}
