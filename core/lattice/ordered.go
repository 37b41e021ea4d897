package lattice

// ordered.go - Insertion-ordered map types for the canonical model.
//
// Foreign lattice formats are order-sensitive: elements must be emitted in
// declaration order and the root defaults to the last declared lattice.
// Go maps do not preserve order, so the canonical tables keep an explicit
// key slice alongside the index and round-trip that order through JSON.

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Attrs is an insertion-ordered table of canonical attributes.
type Attrs struct {
	keys []AttrName
	m    map[AttrName]Value
}

// NewAttrs creates an empty attribute table.
func NewAttrs() *Attrs {
	return &Attrs{m: make(map[AttrName]Value)}
}

// Set inserts or replaces an attribute. Replacing keeps the original position.
func (a *Attrs) Set(name AttrName, v Value) {
	if _, ok := a.m[name]; !ok {
		a.keys = append(a.keys, name)
	}
	a.m[name] = v
}

// Get returns the value of the named attribute.
func (a *Attrs) Get(name AttrName) (Value, bool) {
	v, ok := a.m[name]
	return v, ok
}

// Has returns true if the attribute is present.
func (a *Attrs) Has(name AttrName) bool {
	_, ok := a.m[name]
	return ok
}

// Delete removes an attribute and returns its value.
func (a *Attrs) Delete(name AttrName) (Value, bool) {
	v, ok := a.m[name]
	if !ok {
		return Value{}, false
	}
	delete(a.m, name)
	for i, k := range a.keys {
		if k == name {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Len returns the number of attributes.
func (a *Attrs) Len() int {
	return len(a.keys)
}

// Keys returns the attribute names in insertion order.
func (a *Attrs) Keys() []AttrName {
	out := make([]AttrName, len(a.keys))
	copy(out, a.keys)
	return out
}

// MarshalJSON encodes the table as a JSON object in insertion order.
func (a *Attrs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(a.m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (a *Attrs) UnmarshalJSON(data []byte) error {
	*a = *NewAttrs()
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("attribute key must be a string, got %v", tok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return err
		}
		a.Set(AttrName(key), v)
	}
	_, err := dec.Token() // closing brace
	return err
}

// ElementMap is an insertion-ordered table of named canonical elements.
type ElementMap struct {
	keys []string
	m    map[string]*Element
}

// NewElementMap creates an empty element table.
func NewElementMap() *ElementMap {
	return &ElementMap{m: make(map[string]*Element)}
}

// Set inserts or replaces an element. Replacing keeps the original position.
func (em *ElementMap) Set(name string, el *Element) {
	if _, ok := em.m[name]; !ok {
		em.keys = append(em.keys, name)
	}
	em.m[name] = el
}

// Get returns the named element.
func (em *ElementMap) Get(name string) (*Element, bool) {
	el, ok := em.m[name]
	return el, ok
}

// Has returns true if the element is present.
func (em *ElementMap) Has(name string) bool {
	_, ok := em.m[name]
	return ok
}

// Len returns the number of elements.
func (em *ElementMap) Len() int {
	return len(em.keys)
}

// Keys returns the element names in insertion order.
func (em *ElementMap) Keys() []string {
	out := make([]string, len(em.keys))
	copy(out, em.keys)
	return out
}

// elementJSON is the wire shape of a canonical element: [type, {attrs}].
type elementJSON struct {
	Type  ElementType
	Attrs *Attrs
}

func (ej elementJSON) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{ej.Type, ej.Attrs})
}

func (ej *elementJSON) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '['); err != nil {
		return err
	}
	if err := dec.Decode(&ej.Type); err != nil {
		return err
	}
	ej.Attrs = NewAttrs()
	if dec.More() {
		if err := dec.Decode(ej.Attrs); err != nil {
			return err
		}
	}
	_, err := dec.Token() // closing bracket
	return err
}

// MarshalJSON encodes the table as a JSON object in insertion order, each
// element in the [type, {attrs}] pair form of the interchange format.
func (em *ElementMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range em.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		el := em.m[k]
		val, err := json.Marshal(elementJSON{Type: el.Type, Attrs: el.Attrs})
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (em *ElementMap) UnmarshalJSON(data []byte) error {
	*em = *NewElementMap()
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("element name must be a string, got %v", tok)
		}
		var ej elementJSON
		if err := dec.Decode(&ej); err != nil {
			return err
		}
		em.Set(key, &Element{Type: ej.Type, Attrs: ej.Attrs})
	}
	_, err := dec.Token() // closing brace
	return err
}

// ChildMap is an insertion-ordered table of lattice definitions: a name
// mapped to the ordered list of child names it references.
type ChildMap struct {
	keys []string
	m    map[string][]string
}

// NewChildMap creates an empty lattice table.
func NewChildMap() *ChildMap {
	return &ChildMap{m: make(map[string][]string)}
}

// Set inserts or replaces a lattice definition. Replacing keeps the
// original position.
func (cm *ChildMap) Set(name string, children []string) {
	if _, ok := cm.m[name]; !ok {
		cm.keys = append(cm.keys, name)
	}
	cm.m[name] = children
}

// Get returns the child list of the named lattice.
func (cm *ChildMap) Get(name string) ([]string, bool) {
	c, ok := cm.m[name]
	return c, ok
}

// Has returns true if the lattice is present.
func (cm *ChildMap) Has(name string) bool {
	_, ok := cm.m[name]
	return ok
}

// Len returns the number of lattice definitions.
func (cm *ChildMap) Len() int {
	return len(cm.keys)
}

// Keys returns the lattice names in insertion order.
func (cm *ChildMap) Keys() []string {
	out := make([]string, len(cm.keys))
	copy(out, cm.keys)
	return out
}

// LastKey returns the most recently inserted lattice name. Used for root
// inference when the foreign file names no explicit root.
func (cm *ChildMap) LastKey() (string, bool) {
	if len(cm.keys) == 0 {
		return "", false
	}
	return cm.keys[len(cm.keys)-1], true
}

// MarshalJSON encodes the table as a JSON object in insertion order.
func (cm *ChildMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range cm.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(cm.m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (cm *ChildMap) UnmarshalJSON(data []byte) error {
	*cm = *NewChildMap()
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("lattice name must be a string, got %v", tok)
		}
		var children []string
		if err := dec.Decode(&children); err != nil {
			return err
		}
		cm.Set(key, children)
	}
	_, err := dec.Token() // closing brace
	return err
}

// expectDelim consumes one token and checks it is the given delimiter.
func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
