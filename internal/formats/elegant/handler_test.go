package elegant

import (
	"reflect"
	"strings"
	"testing"

	"github.com/latticemill/latticemill/core/errors"
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

const elegantInput = `! TITLE: demo line
d1: DRIF, l=1
q1: KQUAD, l=0.5, k1=1.2 ! inline comment
cell: LINE=(q1, d1)
ring: LINE=(cell, &
  cell)
USE, ring
RETURN
`

func TestParse(t *testing.T) {
	h := &Handler{}
	lat, report, err := h.Parse(elegantInput, table(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if report.HasDiagnostics() {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics)
	}

	if lat.Title != "demo line" {
		t.Errorf("title = %q", lat.Title)
	}
	if lat.Root != "ring" {
		t.Errorf("root = %q", lat.Root)
	}

	q1, ok := lat.Elements.Get("q1")
	if !ok {
		t.Fatal("q1 missing")
	}
	if q1.Type != lattice.TypeQuadrupole {
		t.Errorf("q1 type = %s", q1.Type)
	}
	if v, _ := q1.Attrs.Get(lattice.AttrK1); v.Float() != 1.2 {
		t.Errorf("q1 k1 = %g", v.Float())
	}

	// The continuation line folds into one LINE definition.
	ring, _ := lat.Lattices.Get("ring")
	if !reflect.DeepEqual(ring, []string{"cell", "cell"}) {
		t.Errorf("ring = %v", ring)
	}
}

func TestParseTypeAliases(t *testing.T) {
	input := `b1: CSBEND, l=1, angle=0.1
b2: SBEN, l=1
`
	h := &Handler{}
	lat, report, err := h.Parse(input, table(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if report.HasDiagnostics() {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics)
	}
	for _, name := range []string{"b1", "b2"} {
		el, _ := lat.Elements.Get(name)
		if el.Type != lattice.TypeDipole {
			t.Errorf("%s type = %s, want Dipole", name, el.Type)
		}
	}
}

func TestParseStopsAtReturn(t *testing.T) {
	input := `d1: DRIF, l=1
RETURN
garbage that would not parse %%%
`
	h := &Handler{}
	lat, _, err := h.Parse(input, table(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !lat.Elements.Has("d1") {
		t.Error("d1 missing")
	}
}

func TestEmit(t *testing.T) {
	lat := lattice.New()
	lat.Title = "demo"
	lat.Root = "ring"

	d := lattice.NewElement(lattice.TypeDrift)
	d.Attrs.Set(lattice.AttrLength, lattice.Number(1))
	lat.Elements.Set("d1", d)

	q := lattice.NewElement(lattice.TypeQuadrupole)
	q.Attrs.Set(lattice.AttrLength, lattice.Number(0.5))
	q.Attrs.Set(lattice.AttrK1, lattice.Number(1.2))
	lat.Elements.Set("q1", q)

	lat.Lattices.Set("cell", []string{"q1", "d1"})
	lat.Lattices.Set("ring", []string{"cell", "cell"})

	h := &Handler{}
	out, report, err := h.Emit(lat, table(t))
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if report.HasDiagnostics() {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics)
	}

	want := `! TITLE: demo
d1: DRIF, L=1
q1: KQUAD, L=0.5, K1=1.2
cell: LINE=(q1, d1)
ring: LINE=(cell, cell)
USE, ring
RETURN
`
	if out != want {
		t.Errorf("Emit() =\n%s\nwant:\n%s", out, want)
	}
}

func TestEmitDropsUnusedLattice(t *testing.T) {
	lat := lattice.New()
	lat.Root = "ring"
	d := lattice.NewElement(lattice.TypeDrift)
	d.Attrs.Set(lattice.AttrLength, lattice.Number(1))
	lat.Elements.Set("d1", d)
	lat.Lattices.Set("ring", []string{"d1"})
	lat.Lattices.Set("orphan", []string{"d1"})

	h := &Handler{}
	out, report, err := h.Emit(lat, table(t))
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if report.Count(lattice.DiagUnusedLattice) != 1 {
		t.Errorf("diagnostics = %v", report.Diagnostics)
	}
	if strings.Contains(out, "orphan") {
		t.Errorf("unused lattice emitted:\n%s", out)
	}
}

func TestEmitMissingMapping(t *testing.T) {
	lat := lattice.New()
	el := lattice.NewElement(lattice.TypeRFCavity)
	el.Attrs.Set(lattice.AttrHarmonicNumber, lattice.Number(32))
	lat.Elements.Set("rf", el)

	h := &Handler{}
	_, _, err := h.Emit(lat, table(t))
	if !errors.Is(err, errors.ErrMissingMapping) {
		t.Errorf("error = %v, want ErrMissingMapping", err)
	}
}

func TestRoundTrip(t *testing.T) {
	h := &Handler{}
	tbl := table(t)

	lat, _, err := h.Parse(elegantInput, tbl)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	out, _, err := h.Emit(lat, tbl)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	back, _, err := h.Parse(out, tbl)
	if err != nil {
		t.Fatalf("reparse error = %v", err)
	}

	if back.Title != lat.Title || back.Root != lat.Root {
		t.Errorf("round trip header = %q/%q", back.Title, back.Root)
	}
	if !reflect.DeepEqual(back.Elements.Keys(), lat.Elements.Keys()) {
		t.Errorf("round trip elements = %v", back.Elements.Keys())
	}
}

func TestDetect(t *testing.T) {
	h := &Handler{}
	if res := h.Detect(elegantInput); !res.Detected {
		t.Errorf("Detect(elegant) = %+v", res)
	}
	if res := h.Detect("d1: DRIFT, L=1;\n"); res.Detected {
		t.Errorf("Detect(madx) = %+v", res)
	}
	if res := h.Detect(`{"elements": {}}`); res.Detected {
		t.Errorf("Detect(json) = %+v", res)
	}
}
