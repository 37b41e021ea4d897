package reconcile

import (
	"testing"

	"github.com/latticemill/latticemill/core/lattice"
)

func steererFixture() *lattice.Lattice {
	lat := lattice.New()

	h := lattice.NewElement(lattice.TypeHorizontalSteerer)
	h.Attrs.Set(lattice.AttrLength, lattice.Number(0.1))
	h.Attrs.Set(lattice.AttrHKick, lattice.Number(0.001))
	lat.Elements.Set("ch", h)

	v := lattice.NewElement(lattice.TypeVerticalSteerer)
	v.Attrs.Set(lattice.AttrVKick, lattice.Number(-0.002))
	lat.Elements.Set("cv", v)

	both := lattice.NewElement(lattice.TypeSteerer)
	both.Attrs.Set(lattice.AttrHKick, lattice.Number(0.003))
	both.Attrs.Set(lattice.AttrVKick, lattice.Number(0.004))
	lat.Elements.Set("chv", both)

	q := lattice.NewElement(lattice.TypeQuadrupole)
	q.Attrs.Set(lattice.AttrLength, lattice.Number(0.5))
	lat.Elements.Set("q1", q)

	return lat
}

func TestMergeSteerers(t *testing.T) {
	lat := steererFixture()
	MergeSteerers(lat)

	tests := []struct {
		name  string
		plane string
		hkick float64
		vkick float64
	}{
		{"ch", KickPlaneHorizontal, 0.001, 0},
		{"cv", KickPlaneVertical, 0, -0.002},
		{"chv", KickPlaneBoth, 0.003, 0.004},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, _ := lat.Elements.Get(tt.name)
			if el.Type != lattice.TypeSteerer {
				t.Fatalf("type = %s, want Steerer", el.Type)
			}
			plane, ok := el.Attrs.Get(lattice.AttrKickPlane)
			if !ok || plane.Str() != tt.plane {
				t.Errorf("kick_plane = %q, want %q", plane.Str(), tt.plane)
			}
			if v, _ := el.Attrs.Get(lattice.AttrHKick); v.Float() != tt.hkick {
				t.Errorf("hkick = %g, want %g", v.Float(), tt.hkick)
			}
			if v, _ := el.Attrs.Get(lattice.AttrVKick); v.Float() != tt.vkick {
				t.Errorf("vkick = %g, want %g", v.Float(), tt.vkick)
			}
		})
	}

	// Unrelated elements pass through untouched.
	q, _ := lat.Elements.Get("q1")
	if q.Type != lattice.TypeQuadrupole || q.Attrs.Has(lattice.AttrKickPlane) {
		t.Error("quadrupole was modified by steerer merging")
	}

	// Other attributes of the steerer survive.
	ch, _ := lat.Elements.Get("ch")
	if v, _ := ch.Attrs.Get(lattice.AttrLength); v.Float() != 0.1 {
		t.Errorf("ch length = %g, want 0.1", v.Float())
	}
}

func TestSplitSteerers(t *testing.T) {
	lat := steererFixture()
	MergeSteerers(lat)
	SplitSteerers(lat)

	ch, _ := lat.Elements.Get("ch")
	if ch.Type != lattice.TypeHorizontalSteerer {
		t.Errorf("ch type = %s, want HorizontalSteerer", ch.Type)
	}
	if v, _ := ch.Attrs.Get(lattice.AttrKick); v.Float() != 0.001 {
		t.Errorf("ch kick = %g, want 0.001", v.Float())
	}
	if ch.Attrs.Has(lattice.AttrKickPlane) || ch.Attrs.Has(lattice.AttrVKick) {
		t.Errorf("ch kept merged attributes: %v", ch.Attrs.Keys())
	}

	cv, _ := lat.Elements.Get("cv")
	if cv.Type != lattice.TypeVerticalSteerer {
		t.Errorf("cv type = %s, want VerticalSteerer", cv.Type)
	}
	if v, _ := cv.Attrs.Get(lattice.AttrKick); v.Float() != -0.002 {
		t.Errorf("cv kick = %g, want -0.002", v.Float())
	}

	// A both-plane steerer keeps the combined type and its kick components,
	// losing only the selector.
	chv, _ := lat.Elements.Get("chv")
	if chv.Type != lattice.TypeSteerer {
		t.Errorf("chv type = %s, want Steerer", chv.Type)
	}
	if chv.Attrs.Has(lattice.AttrKickPlane) {
		t.Error("chv kept the kick_plane selector")
	}
	if v, _ := chv.Attrs.Get(lattice.AttrHKick); v.Float() != 0.003 {
		t.Errorf("chv hkick = %g, want 0.003", v.Float())
	}
	if v, _ := chv.Attrs.Get(lattice.AttrVKick); v.Float() != 0.004 {
		t.Errorf("chv vkick = %g, want 0.004", v.Float())
	}
}

func TestSplitSteerersWithoutSelector(t *testing.T) {
	lat := lattice.New()
	plain := lattice.NewElement(lattice.TypeSteerer)
	plain.Attrs.Set(lattice.AttrHKick, lattice.Number(0.001))
	lat.Elements.Set("c1", plain)

	SplitSteerers(lat)

	el, _ := lat.Elements.Get("c1")
	if el.Type != lattice.TypeSteerer {
		t.Errorf("type = %s, want Steerer (no selector, nothing to split)", el.Type)
	}
	if v, _ := el.Attrs.Get(lattice.AttrHKick); v.Float() != 0.001 {
		t.Errorf("hkick = %g, want 0.001", v.Float())
	}
}
