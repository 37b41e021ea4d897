package reconcile

import (
	"github.com/latticemill/latticemill/core/lattice"
)

// corrector.go - Steerer remapping between plane-split and combined forms.
//
// MADX and elegant model orbit correctors as separate horizontal and
// vertical element types; other toolkits use one corrector element with a
// kick-plane selector. These helpers rewrite a canonical lattice between
// the two conventions.

// Kick plane selector values stored in the kick_plane attribute.
const (
	KickPlaneHorizontal = "h"
	KickPlaneVertical   = "v"
	KickPlaneBoth       = "hv"
)

// MergeSteerers rewrites plane-specific steerers into combined Steerer
// elements carrying a kick_plane selector and both kick components. The
// element table is modified in place.
func MergeSteerers(lat *lattice.Lattice) {
	for _, name := range lat.Elements.Keys() {
		el, _ := lat.Elements.Get(name)
		switch el.Type {
		case lattice.TypeHorizontalSteerer:
			hkick, _ := el.Attrs.Delete(lattice.AttrHKick)
			if !hkick.IsNumber() {
				hkick = lattice.Number(0)
			}
			el.Type = lattice.TypeSteerer
			el.Attrs.Set(lattice.AttrKickPlane, lattice.String(KickPlaneHorizontal))
			el.Attrs.Set(lattice.AttrHKick, hkick)
			el.Attrs.Set(lattice.AttrVKick, lattice.Number(0))

		case lattice.TypeVerticalSteerer:
			vkick, _ := el.Attrs.Delete(lattice.AttrVKick)
			if !vkick.IsNumber() {
				vkick = lattice.Number(0)
			}
			el.Type = lattice.TypeSteerer
			el.Attrs.Set(lattice.AttrKickPlane, lattice.String(KickPlaneVertical))
			el.Attrs.Set(lattice.AttrHKick, lattice.Number(0))
			el.Attrs.Set(lattice.AttrVKick, vkick)

		case lattice.TypeSteerer:
			hkick, ok := el.Attrs.Delete(lattice.AttrHKick)
			if !ok {
				hkick = lattice.Number(0)
			}
			vkick, ok := el.Attrs.Delete(lattice.AttrVKick)
			if !ok {
				vkick = lattice.Number(0)
			}
			el.Attrs.Set(lattice.AttrKickPlane, lattice.String(KickPlaneBoth))
			el.Attrs.Set(lattice.AttrHKick, hkick)
			el.Attrs.Set(lattice.AttrVKick, vkick)
		}
	}
}

// SplitSteerers is the inverse of MergeSteerers: combined Steerer elements
// with a single-plane kick_plane selector become plane-specific steerers
// with one kick attribute. Steerers kicking in both planes keep the
// combined type but lose the selector.
func SplitSteerers(lat *lattice.Lattice) {
	for _, name := range lat.Elements.Keys() {
		el, _ := lat.Elements.Get(name)
		if el.Type != lattice.TypeSteerer {
			continue
		}
		plane, ok := el.Attrs.Delete(lattice.AttrKickPlane)
		if !ok {
			continue
		}
		switch plane.Str() {
		case KickPlaneHorizontal:
			kick, _ := el.Attrs.Delete(lattice.AttrHKick)
			el.Attrs.Delete(lattice.AttrVKick)
			el.Type = lattice.TypeHorizontalSteerer
			el.Attrs.Set(lattice.AttrKick, kick)
		case KickPlaneVertical:
			kick, _ := el.Attrs.Delete(lattice.AttrVKick)
			el.Attrs.Delete(lattice.AttrHKick)
			el.Type = lattice.TypeVerticalSteerer
			el.Attrs.Set(lattice.AttrKick, kick)
		}
	}
}
