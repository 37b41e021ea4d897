package lattice

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind discriminates the scalar kinds an attribute value can hold.
type ValueKind int

// Value kind constants.
const (
	// KindNumber is a floating-point attribute value (lengths, strengths, angles).
	KindNumber ValueKind = iota

	// KindString is a textual attribute value (e.g., a kick plane selector).
	KindString
)

// Value is a tagged numeric-or-string scalar. Attribute tables map closed
// canonical attribute names to Values, never to untyped interface{} data.
type Value struct {
	kind ValueKind
	num  float64
	str  string
}

// Number creates a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// String creates a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Kind returns the kind tag of the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNumber returns true if the value holds a number.
func (v Value) IsNumber() bool {
	return v.kind == KindNumber
}

// Float returns the numeric payload, or 0 for string values.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.num
}

// Str returns the string payload, or "" for numeric values.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// Text renders the value the way lattice file formats expect: numbers in
// the shortest representation that round-trips, strings verbatim.
func (v Value) Text() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.str
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.num == other.num
	}
	return v.str == other.str
}

// MarshalJSON encodes the value as a bare JSON number or string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON decodes a JSON number or string into a tagged Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = Number(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*v = String(str)
		return nil
	}
	return fmt.Errorf("attribute value must be a number or string, got %s", string(data))
}
