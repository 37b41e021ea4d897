package namemap

import (
	"strings"
	"testing"
)

func testRows() []Row {
	return []Row{
		{Kind: KindType, Canonical: "Quadrupole", Foreign: map[Format][]string{
			FormatElegant: {"KQUAD", "QUAD"},
			FormatMADX:    {"QUADRUPOLE"},
			FormatPyAT:    {"Quadrupole"},
		}},
		{Kind: KindAttribute, Canonical: "length", Foreign: map[Format][]string{
			FormatElegant: {"L"},
			FormatMADX:    {"L"},
			FormatPyAT:    {"length"},
		}},
	}
}

func TestTableLookups(t *testing.T) {
	table, err := New(testRows())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name    string
		lookup  func() (string, bool)
		want    string
		wantOK  bool
	}{
		{
			name:   "preferred spelling on emission",
			lookup: func() (string, bool) { return table.TypeToForeign(FormatElegant, "Quadrupole") },
			want:   "KQUAD", wantOK: true,
		},
		{
			name:   "alias accepted on input",
			lookup: func() (string, bool) { return table.TypeFromForeign(FormatElegant, "QUAD") },
			want:   "Quadrupole", wantOK: true,
		},
		{
			name:   "input lookup is case-insensitive",
			lookup: func() (string, bool) { return table.TypeFromForeign(FormatMADX, "quadrupole") },
			want:   "Quadrupole", wantOK: true,
		},
		{
			name:   "attribute translation",
			lookup: func() (string, bool) { return table.AttrFromForeign(FormatMADX, "l") },
			want:   "length", wantOK: true,
		},
		{
			name:   "missing canonical name",
			lookup: func() (string, bool) { return table.TypeToForeign(FormatMADX, "Wiggler") },
			wantOK: false,
		},
		{
			name:   "attribute names never leak into the type table",
			lookup: func() (string, bool) { return table.TypeFromForeign(FormatMADX, "L") },
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.lookup()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("lookup = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTableUniqueness(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
		want string
	}{
		{
			name: "duplicate canonical name",
			rows: []Row{
				{Kind: KindType, Canonical: "Drift", Foreign: map[Format][]string{FormatMADX: {"DRIFT"}}},
				{Kind: KindType, Canonical: "Drift", Foreign: map[Format][]string{FormatMADX: {"DL"}}},
			},
			want: "duplicate canonical",
		},
		{
			name: "foreign name claimed twice in one format",
			rows: []Row{
				{Kind: KindType, Canonical: "Drift", Foreign: map[Format][]string{FormatMADX: {"DRIFT"}}},
				{Kind: KindType, Canonical: "Marker", Foreign: map[Format][]string{FormatMADX: {"drift"}}},
			},
			want: "maps to both",
		},
		{
			name: "unknown format column",
			rows: []Row{
				{Kind: KindType, Canonical: "Drift", Foreign: map[Format][]string{Format("bmad"): {"DRIFT"}}},
			},
			want: "unknown format",
		},
		{
			name: "invalid kind",
			rows: []Row{
				{Kind: Kind("thing"), Canonical: "Drift"},
			},
			want: "invalid kind",
		},
		{
			name: "empty canonical name",
			rows: []Row{
				{Kind: KindType, Canonical: ""},
			},
			want: "empty canonical",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows)
			if err == nil {
				t.Fatal("expected construction error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestDefaultTable(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	// A sample of bundled vocabulary in both directions.
	if got, ok := table.TypeFromForeign(FormatElegant, "csbend"); !ok || got != "Dipole" {
		t.Errorf("elegant csbend = %q, %v; want Dipole", got, ok)
	}
	if got, ok := table.TypeFromForeign(FormatMADX, "RBEND"); !ok || got != "Dipole" {
		t.Errorf("madx RBEND = %q, %v; want Dipole", got, ok)
	}
	if got, ok := table.TypeToForeign(FormatPyAT, "Steerer"); !ok || got != "Corrector" {
		t.Errorf("pyat Steerer = %q, %v; want Corrector", got, ok)
	}
	if got, ok := table.AttrToForeign(FormatPyAT, "angle"); !ok || got != "bending_angle" {
		t.Errorf("pyat angle = %q, %v; want bending_angle", got, ok)
	}
	if _, ok := table.TypeToForeign(FormatPyAT, "HorizontalSteerer"); ok {
		t.Error("HorizontalSteerer should have no direct pyat mapping; steerers are merged first")
	}

	if MustDefault() != table {
		t.Error("MustDefault() should return the cached table")
	}
}
