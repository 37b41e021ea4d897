// Package namemap provides the bidirectional vocabulary tables that map
// canonical element-type and attribute names onto the vocabulary of each
// foreign lattice format.
//
// A Table is built once from configuration rows, validated for key
// uniqueness, and then read-only; reconciler and emitter calls receive it
// explicitly instead of reaching for package-level state.
package namemap

import (
	"fmt"
	"strings"
)

// Format identifies a foreign lattice format with a vocabulary column in
// the name map.
type Format string

// Foreign format constants.
const (
	FormatElegant Format = "elegant"
	FormatMADX    Format = "madx"
	FormatPyAT    Format = "pyat"
)

// validFormats is the set of formats with name-map columns.
var validFormats = map[Format]bool{
	FormatElegant: true,
	FormatMADX:    true,
	FormatPyAT:    true,
}

// IsValid returns true if the format has a name-map column.
func (f Format) IsValid() bool {
	return validFormats[f]
}

// Kind separates the element-type vocabulary from the attribute vocabulary.
// The two are looked up independently.
type Kind string

// Vocabulary kind constants.
const (
	KindType      Kind = "type"
	KindAttribute Kind = "attribute"
)

// Row is one configuration entry: a canonical name and its foreign
// spellings per format. The first foreign name of a format is the
// preferred spelling used on emission; the rest are accepted aliases on
// input.
type Row struct {
	Kind      Kind                `json:"kind"`
	Canonical string              `json:"canonical"`
	Foreign   map[Format][]string `json:"foreign"`
}

// Table holds the four (or more) derived lookup tables: canonical→foreign
// and foreign→canonical, independently per format and per vocabulary kind.
// Foreign lookups are case-insensitive; emission uses the stored preferred
// spelling verbatim.
type Table struct {
	toForeign   map[Kind]map[Format]map[string]string
	fromForeign map[Kind]map[Format]map[string]string
}

// New builds a Table from configuration rows.
//
// Uniqueness invariants are enforced at construction: canonical names must
// be unique per kind, and foreign names must be unique per kind and format
// across the whole table.
func New(rows []Row) (*Table, error) {
	t := &Table{
		toForeign:   make(map[Kind]map[Format]map[string]string),
		fromForeign: make(map[Kind]map[Format]map[string]string),
	}

	seenCanonical := make(map[Kind]map[string]bool)

	for _, row := range rows {
		if row.Kind != KindType && row.Kind != KindAttribute {
			return nil, fmt.Errorf("row %q: invalid kind %q", row.Canonical, row.Kind)
		}
		if row.Canonical == "" {
			return nil, fmt.Errorf("row with empty canonical name")
		}

		if seenCanonical[row.Kind] == nil {
			seenCanonical[row.Kind] = make(map[string]bool)
		}
		if seenCanonical[row.Kind][row.Canonical] {
			return nil, fmt.Errorf("duplicate canonical %s %q", row.Kind, row.Canonical)
		}
		seenCanonical[row.Kind][row.Canonical] = true

		for format, names := range row.Foreign {
			if !format.IsValid() {
				return nil, fmt.Errorf("row %q: unknown format %q", row.Canonical, format)
			}
			if len(names) == 0 {
				continue
			}
			t.kindFormat(t.toForeign, row.Kind, format)[row.Canonical] = names[0]
			from := t.kindFormat(t.fromForeign, row.Kind, format)
			for _, name := range names {
				key := strings.ToLower(name)
				if prev, ok := from[key]; ok {
					return nil, fmt.Errorf("foreign %s %q maps to both %q and %q in format %s",
						row.Kind, name, prev, row.Canonical, format)
				}
				from[key] = row.Canonical
			}
		}
	}

	return t, nil
}

// kindFormat returns (allocating on demand) the inner lookup map for a
// vocabulary kind and format.
func (t *Table) kindFormat(outer map[Kind]map[Format]map[string]string, kind Kind, format Format) map[string]string {
	if outer[kind] == nil {
		outer[kind] = make(map[Format]map[string]string)
	}
	if outer[kind][format] == nil {
		outer[kind][format] = make(map[string]string)
	}
	return outer[kind][format]
}

// ToForeign translates a canonical name into the preferred foreign
// spelling of the given format.
func (t *Table) ToForeign(kind Kind, format Format, canonical string) (string, bool) {
	name, ok := t.toForeign[kind][format][canonical]
	return name, ok
}

// FromForeign translates a foreign name (case-insensitively) into its
// canonical name.
func (t *Table) FromForeign(kind Kind, format Format, foreign string) (string, bool) {
	name, ok := t.fromForeign[kind][format][strings.ToLower(foreign)]
	return name, ok
}

// TypeToForeign translates a canonical element type for emission.
func (t *Table) TypeToForeign(format Format, canonical string) (string, bool) {
	return t.ToForeign(KindType, format, canonical)
}

// TypeFromForeign translates a foreign element type to canonical.
func (t *Table) TypeFromForeign(format Format, foreign string) (string, bool) {
	return t.FromForeign(KindType, format, foreign)
}

// AttrToForeign translates a canonical attribute name for emission.
func (t *Table) AttrToForeign(format Format, canonical string) (string, bool) {
	return t.ToForeign(KindAttribute, format, canonical)
}

// AttrFromForeign translates a foreign attribute name to canonical.
func (t *Table) AttrFromForeign(format Format, foreign string) (string, bool) {
	return t.FromForeign(KindAttribute, format, foreign)
}
