package lattice

// types.go - Consolidated canonical lattice type definitions.
// All format handlers should import these types from core/lattice rather
// than defining their own.

// ElementType represents the canonical type of a beamline element.
type ElementType string

// Canonical element type constants.
const (
	// TypeDrift is privileged: it is the fallback type for unmappable
	// foreign elements and always carries a length attribute.
	TypeDrift ElementType = "Drift"

	TypeDipole             ElementType = "Dipole"
	TypeQuadrupole         ElementType = "Quadrupole"
	TypeSextupole          ElementType = "Sextupole"
	TypeOctupole           ElementType = "Octupole"
	TypeMultipole          ElementType = "Multipole"
	TypeMarker             ElementType = "Marker"
	TypeMonitor            ElementType = "Monitor"
	TypeHorizontalSteerer  ElementType = "HorizontalSteerer"
	TypeVerticalSteerer    ElementType = "VerticalSteerer"
	TypeSteerer            ElementType = "Steerer"
	TypeRFCavity           ElementType = "RFCavity"
	TypeSolenoid           ElementType = "Solenoid"
)

// validElementTypes is the set of valid canonical element types.
var validElementTypes = map[ElementType]bool{
	TypeDrift:             true,
	TypeDipole:            true,
	TypeQuadrupole:        true,
	TypeSextupole:         true,
	TypeOctupole:          true,
	TypeMultipole:         true,
	TypeMarker:            true,
	TypeMonitor:           true,
	TypeHorizontalSteerer: true,
	TypeVerticalSteerer:   true,
	TypeSteerer:           true,
	TypeRFCavity:          true,
	TypeSolenoid:          true,
}

// IsValid returns true if the element type is valid.
func (t ElementType) IsValid() bool {
	return validElementTypes[t]
}

// AttrName represents a canonical attribute identifier.
type AttrName string

// Canonical attribute name constants.
const (
	AttrLength         AttrName = "length"
	AttrAngle          AttrName = "angle"
	AttrE1             AttrName = "e1"
	AttrE2             AttrName = "e2"
	AttrK1             AttrName = "k1"
	AttrK2             AttrName = "k2"
	AttrK3             AttrName = "k3"
	AttrHKick          AttrName = "hkick"
	AttrVKick          AttrName = "vkick"
	AttrKick           AttrName = "kick"
	AttrKickPlane      AttrName = "kick_plane"
	AttrVoltage        AttrName = "voltage"
	AttrFrequency      AttrName = "frequency"
	AttrHarmonicNumber AttrName = "harmonic_number"
	AttrTilt           AttrName = "tilt"
)

// validAttrNames is the set of valid canonical attribute names.
var validAttrNames = map[AttrName]bool{
	AttrLength:         true,
	AttrAngle:          true,
	AttrE1:             true,
	AttrE2:             true,
	AttrK1:             true,
	AttrK2:             true,
	AttrK3:             true,
	AttrHKick:          true,
	AttrVKick:          true,
	AttrKick:           true,
	AttrKickPlane:      true,
	AttrVoltage:        true,
	AttrFrequency:      true,
	AttrHarmonicNumber: true,
	AttrTilt:           true,
}

// IsValid returns true if the attribute name is valid.
func (a AttrName) IsValid() bool {
	return validAttrNames[a]
}

// Element is a canonical beamline element: a canonical type plus an
// ordered table of canonical attributes.
type Element struct {
	Type  ElementType
	Attrs *Attrs
}

// NewElement creates an element of the given type with an empty attribute table.
func NewElement(t ElementType) *Element {
	return &Element{Type: t, Attrs: NewAttrs()}
}

// Length returns the element's length attribute, or 0 if absent.
func (e *Element) Length() float64 {
	if e.Attrs == nil {
		return 0
	}
	if v, ok := e.Attrs.Get(AttrLength); ok {
		return v.Float()
	}
	return 0
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	clone := NewElement(e.Type)
	if e.Attrs != nil {
		for _, name := range e.Attrs.Keys() {
			v, _ := e.Attrs.Get(name)
			clone.Attrs.Set(name, v)
		}
	}
	return clone
}

// CommandAttr is a single (attribute, value) pair of a foreign-format command.
type CommandAttr struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Command is a foreign-format directive the canonical model carries
// opaquely (e.g., a MADX sequence declaration). The converter never
// interprets commands beyond detecting the "sequence" keyword.
type Command struct {
	Keyword string        `json:"keyword"`
	Name    string        `json:"name,omitempty"`
	Attrs   []CommandAttr `json:"attrs,omitempty"`
}

// Attr returns the value of the named command attribute.
func (c *Command) Attr(name string) (Value, bool) {
	for _, a := range c.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// KeywordSequence marks commands that trigger the absolute-position
// rendering path on emission.
const KeywordSequence = "sequence"

// Lattice is the canonical interchange representation of a machine layout.
type Lattice struct {
	// Title is free text describing the machine. Default empty.
	Title string `json:"title"`

	// Root names the top-level lattice definition. It must exist as a key
	// in Lattices.
	Root string `json:"root"`

	// Elements maps unique element names to canonical elements, in
	// insertion order.
	Elements *ElementMap `json:"elements"`

	// Lattices maps unique lattice names to ordered child-name lists, in
	// insertion order. Each child resolves to an element or another lattice.
	Lattices *ChildMap `json:"lattices"`

	// Commands carries foreign-format directives opaquely.
	Commands []Command `json:"commands,omitempty"`
}

// New creates an empty lattice with initialized tables.
func New() *Lattice {
	return &Lattice{
		Elements: NewElementMap(),
		Lattices: NewChildMap(),
	}
}

// SequenceCommand returns the first stored command with the "sequence"
// keyword, or nil if the lattice was not declared sequence-style.
func (l *Lattice) SequenceCommand() *Command {
	for i := range l.Commands {
		if l.Commands[i].Keyword == KeywordSequence {
			return &l.Commands[i]
		}
	}
	return nil
}

// IsLattice returns true if name refers to a sub-lattice (as opposed to an
// element or nothing at all).
func (l *Lattice) IsLattice(name string) bool {
	return l.Lattices.Has(name)
}
