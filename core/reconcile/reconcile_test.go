package reconcile

import (
	"reflect"
	"testing"

	"github.com/latticemill/latticemill/core/lattice"
	"github.com/latticemill/latticemill/core/namemap"
)

func table(t *testing.T) *namemap.Table {
	t.Helper()
	tbl, err := namemap.Default()
	if err != nil {
		t.Fatalf("namemap.Default() error = %v", err)
	}
	return tbl
}

func TestReconcileTranslation(t *testing.T) {
	raw := NewRawRecord()
	raw.Title = "demo"
	raw.AddElement("q1", "QUADRUPOLE", []RawAttr{
		{Name: "L", Value: lattice.Number(0.5)},
		{Name: "K1", Value: lattice.Number(1.2)},
	})
	raw.Lattices.Set("ring", []string{"q1"})

	lat, report := Reconcile(raw, table(t), namemap.FormatMADX)

	if report.HasDiagnostics() {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics)
	}
	if lat.Title != "demo" {
		t.Errorf("title = %q", lat.Title)
	}
	el, ok := lat.Elements.Get("q1")
	if !ok {
		t.Fatal("q1 missing")
	}
	if el.Type != lattice.TypeQuadrupole {
		t.Errorf("q1 type = %s", el.Type)
	}
	if got := el.Attrs.Keys(); !reflect.DeepEqual(got, []lattice.AttrName{lattice.AttrLength, lattice.AttrK1}) {
		t.Errorf("q1 attrs = %v", got)
	}
}

func TestReconcileUnknownTypeFallsBackToDrift(t *testing.T) {
	tests := []struct {
		name       string
		attrs      []RawAttr
		wantLength float64
	}{
		{
			name:       "length taken from L",
			attrs:      []RawAttr{{Name: "L", Value: lattice.Number(2.5)}, {Name: "GAP", Value: lattice.Number(0.1)}},
			wantLength: 2.5,
		},
		{
			name:       "no L synthesizes zero length",
			attrs:      nil,
			wantLength: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := NewRawRecord()
			raw.AddElement("w1", "WIGGLER", tt.attrs)

			lat, report := Reconcile(raw, table(t), namemap.FormatMADX)

			el, ok := lat.Elements.Get("w1")
			if !ok {
				t.Fatal("w1 missing")
			}
			if el.Type != lattice.TypeDrift {
				t.Errorf("w1 type = %s, want Drift", el.Type)
			}
			if got := el.Length(); got != tt.wantLength {
				t.Errorf("w1 length = %g, want %g", got, tt.wantLength)
			}
			if el.Attrs.Len() != 1 {
				t.Errorf("fallback should keep only length, got %v", el.Attrs.Keys())
			}
			if report.Count(lattice.DiagUnknownElementType) != 1 {
				t.Errorf("diagnostics = %v", report.Diagnostics)
			}
		})
	}
}

func TestReconcileUnknownAttributeDropped(t *testing.T) {
	raw := NewRawRecord()
	raw.AddElement("q1", "QUADRUPOLE", []RawAttr{
		{Name: "L", Value: lattice.Number(0.5)},
		{Name: "APERTURE", Value: lattice.Number(0.02)},
	})

	lat, report := Reconcile(raw, table(t), namemap.FormatMADX)

	el, _ := lat.Elements.Get("q1")
	if el.Attrs.Has(lattice.AttrName("aperture")) {
		t.Error("unknown attribute survived translation")
	}
	if el.Attrs.Len() != 1 {
		t.Errorf("attrs = %v", el.Attrs.Keys())
	}
	if report.Count(lattice.DiagUnknownAttribute) != 1 {
		t.Errorf("diagnostics = %v", report.Diagnostics)
	}
}

func TestReconcileAttrlessElementGetsZeroLength(t *testing.T) {
	raw := NewRawRecord()
	raw.AddElement("m1", "MARKER", nil)

	lat, _ := Reconcile(raw, table(t), namemap.FormatMADX)

	el, _ := lat.Elements.Get("m1")
	if el.Type != lattice.TypeMarker {
		t.Errorf("m1 type = %s", el.Type)
	}
	if v, ok := el.Attrs.Get(lattice.AttrLength); !ok || v.Float() != 0 {
		t.Errorf("m1 length = %v, %v; want 0", v, ok)
	}
}

func TestReconcileElementAlias(t *testing.T) {
	raw := NewRawRecord()
	raw.AddElement("q1", "QUADRUPOLE", []RawAttr{
		{Name: "L", Value: lattice.Number(0.5)},
		{Name: "K1", Value: lattice.Number(1.2)},
	})
	// q2 copies q1 but overrides the strength.
	raw.AddElement("q2", "q1", []RawAttr{
		{Name: "K1", Value: lattice.Number(-1.2)},
	})

	lat, report := Reconcile(raw, table(t), namemap.FormatMADX)

	if report.HasDiagnostics() {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics)
	}
	el, ok := lat.Elements.Get("q2")
	if !ok {
		t.Fatal("q2 missing")
	}
	if el.Type != lattice.TypeQuadrupole {
		t.Errorf("q2 type = %s", el.Type)
	}
	if v, _ := el.Attrs.Get(lattice.AttrLength); v.Float() != 0.5 {
		t.Errorf("q2 length = %g, want 0.5 (inherited)", v.Float())
	}
	if v, _ := el.Attrs.Get(lattice.AttrK1); v.Float() != -1.2 {
		t.Errorf("q2 k1 = %g, want -1.2 (overridden)", v.Float())
	}

	// The referenced element is untouched.
	orig, _ := lat.Elements.Get("q1")
	if v, _ := orig.Attrs.Get(lattice.AttrK1); v.Float() != 1.2 {
		t.Errorf("q1 k1 = %g, want 1.2", v.Float())
	}
}

func TestReconcileAliasChain(t *testing.T) {
	raw := NewRawRecord()
	raw.AddElement("base", "SBEND", []RawAttr{
		{Name: "L", Value: lattice.Number(1)},
		{Name: "ANGLE", Value: lattice.Number(0.1)},
	})
	raw.AddElement("mid", "base", []RawAttr{
		{Name: "ANGLE", Value: lattice.Number(0.2)},
	})
	raw.AddElement("leaf", "mid", nil)

	lat, _ := Reconcile(raw, table(t), namemap.FormatMADX)

	el, _ := lat.Elements.Get("leaf")
	if el.Type != lattice.TypeDipole {
		t.Errorf("leaf type = %s, want Dipole", el.Type)
	}
	if v, _ := el.Attrs.Get(lattice.AttrAngle); v.Float() != 0.2 {
		t.Errorf("leaf angle = %g, want 0.2 (from mid)", v.Float())
	}
	if v, _ := el.Attrs.Get(lattice.AttrLength); v.Float() != 1 {
		t.Errorf("leaf length = %g, want 1 (from base)", v.Float())
	}
}

func TestReconcileAliasCycleStops(t *testing.T) {
	raw := NewRawRecord()
	raw.AddElement("a", "b", nil)
	raw.AddElement("b", "a", nil)

	lat, report := Reconcile(raw, table(t), namemap.FormatMADX)

	// The walk stops at the first repeated name; the dangling type fails
	// translation and falls back to Drift.
	if report.Count(lattice.DiagUnknownElementType) != 2 {
		t.Errorf("diagnostics = %v", report.Diagnostics)
	}
	for _, name := range []string{"a", "b"} {
		el, _ := lat.Elements.Get(name)
		if el.Type != lattice.TypeDrift {
			t.Errorf("%s type = %s, want Drift", name, el.Type)
		}
	}
}

func TestReconcileRootDefaultsToLastLattice(t *testing.T) {
	raw := NewRawRecord()
	raw.Lattices.Set("cell", []string{})
	raw.Lattices.Set("ring", []string{"cell"})

	lat, _ := Reconcile(raw, table(t), namemap.FormatMADX)
	if lat.Root != "ring" {
		t.Errorf("root = %q, want ring (last declared)", lat.Root)
	}

	raw.Root = "cell"
	lat, _ = Reconcile(raw, table(t), namemap.FormatMADX)
	if lat.Root != "cell" {
		t.Errorf("root = %q, want cell (explicit)", lat.Root)
	}
}
