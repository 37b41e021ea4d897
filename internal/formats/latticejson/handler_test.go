package latticejson

import (
	"reflect"
	"strings"
	"testing"

	"github.com/latticemill/latticemill/core/lattice"
)

const jsonInput = `{
  "title": "demo",
  "root": "ring",
  "elements": {
    "q1": ["Quadrupole", {"length": 0.5, "k1": 1.2}],
    "d1": ["Drift", {"length": 1}]
  },
  "lattices": {
    "cell": ["q1", "d1"],
    "ring": ["cell", "cell"]
  }
}`

func TestParse(t *testing.T) {
	h := &Handler{}
	lat, report, err := h.Parse(jsonInput, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if report.HasDiagnostics() {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics)
	}

	if lat.Title != "demo" || lat.Root != "ring" {
		t.Errorf("header = %q/%q", lat.Title, lat.Root)
	}
	// Declaration order survives decoding.
	if got := lat.Elements.Keys(); !reflect.DeepEqual(got, []string{"q1", "d1"}) {
		t.Errorf("element order = %v", got)
	}
	if got := lat.Lattices.Keys(); !reflect.DeepEqual(got, []string{"cell", "ring"}) {
		t.Errorf("lattice order = %v", got)
	}

	q1, _ := lat.Elements.Get("q1")
	if q1.Type != lattice.TypeQuadrupole {
		t.Errorf("q1 type = %s", q1.Type)
	}
	if v, _ := q1.Attrs.Get(lattice.AttrK1); v.Float() != 1.2 {
		t.Errorf("q1 k1 = %g", v.Float())
	}
}

func TestParseEmptyObject(t *testing.T) {
	h := &Handler{}
	lat, _, err := h.Parse(`{"title": "bare"}`, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if lat.Elements == nil || lat.Lattices == nil {
		t.Error("tables not initialized for sparse input")
	}
}

func TestParseInvalid(t *testing.T) {
	h := &Handler{}
	if _, _, err := h.Parse(`{"elements": [1, 2]}`, nil); err == nil {
		t.Error("expected decode error")
	}
}

func TestEmitRoundTrip(t *testing.T) {
	h := &Handler{}
	lat, _, err := h.Parse(jsonInput, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	out, _, err := h.Emit(lat, nil)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("emitted JSON should end with a newline")
	}

	back, _, err := h.Parse(out, nil)
	if err != nil {
		t.Fatalf("reparse error = %v", err)
	}
	if !reflect.DeepEqual(back.Elements.Keys(), lat.Elements.Keys()) {
		t.Errorf("element order changed: %v", back.Elements.Keys())
	}
	if !reflect.DeepEqual(back.Lattices.Keys(), lat.Lattices.Keys()) {
		t.Errorf("lattice order changed: %v", back.Lattices.Keys())
	}
}

func TestDetect(t *testing.T) {
	h := &Handler{}
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"lattice json", jsonInput, true},
		{"json without lattice keys", `{"foo": 1}`, false},
		{"madx text", "d1: DRIFT, L=1;\n", false},
		{"invalid json", `{"elements":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := h.Detect(tt.text); res.Detected != tt.want {
				t.Errorf("Detect() = %+v, want detected=%v", res, tt.want)
			}
		})
	}
}
