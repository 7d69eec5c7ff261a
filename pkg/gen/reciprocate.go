package gen

import (
	"math/rand/v2"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// ReciprocatePortals turns one-way portals into matched pairs. A portal
// lacks a return edge when no portal on its target arrives at this portal's
// local position. For each such portal it synthesizes one: a portal on the
// far map pointing back, placed at a random non-corner tile along the edge
// whose inward direction is the opposite of the source portal's facing.
// The source portal's arrival fields are updated to the synthesized
// portal's position and facing, so a second run finds every edge matched
// and does nothing.
//
// The generator declines for source or target maps with a dimension below
// 3 tiles (no non-corner edge tile exists) and for portals with a
// non-cardinal facing.
type ReciprocatePortals struct {
	rng *rand.Rand
}

// NewReciprocatePortals creates a reciprocation generator.
func NewReciprocatePortals(rng *rand.Rand) *ReciprocatePortals {
	return &ReciprocatePortals{rng: rng}
}

// Apply reciprocates the portals of the map at h.
func (g *ReciprocatePortals) Apply(r *dungeon.Registry, h dungeon.Handle) {
	var size geom.Size
	var count int
	r.Read(h, func(m *dungeon.Map) {
		size = m.Size()
		count = m.PortalCount()
	})
	if size.Width < 3 || size.Height < 3 {
		return
	}

	// Portals appended by the loop itself (self-loop reciprocals) are not
	// revisited: the count is fixed up front.
	for i := 0; i < count; i++ {
		var target dungeon.Handle
		r.Read(h, func(m *dungeon.Map) { target = m.PortalAt(i).Target })

		// Both ends are written: the target gains the return portal and the
		// source portal's arrival fields are filled in. WritePair handles
		// lock ordering and collapses self-loop portals to a single lock.
		r.WritePair(h, target, func(src, dst *dungeon.Map) {
			p := src.PortalAt(i)
			for _, q := range dst.Portals() {
				if q.TargetPos == p.LocalPos {
					return // already reciprocated
				}
			}

			back := p.Facing.Opposite()
			local, ok := edgePoint(g.rng, dst.Size(), back)
			if !ok {
				return
			}
			dst.AddPortal(dungeon.Portal{
				LocalPos:     local,
				Facing:       back,
				Target:       h,
				TargetPos:    p.LocalPos,
				TargetFacing: p.Facing,
			})
			// For a self-loop portal AddPortal appended to src's own portal
			// list, which may have invalidated p; re-resolve before writing.
			p = src.PortalAt(i)
			p.TargetPos = local
			p.TargetFacing = back
		})
	}
}

// ApplyPlaced is identical to Apply; reciprocation is position-independent.
func (g *ReciprocatePortals) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) { g.Apply(r, h) }

// edgePoint picks a random non-corner tile on the edge of a map whose
// inward direction is the given facing. It declines for degenerate bounds
// (either dimension below 3) and non-cardinal facings.
func edgePoint(rng *rand.Rand, size geom.Size, inward geom.Direction) (geom.Point, bool) {
	if size.Width < 3 || size.Height < 3 {
		return geom.Point{}, false
	}
	switch inward {
	case geom.South:
		return geom.Pt(1+rng.IntN(size.Width-2), 0), true
	case geom.North:
		return geom.Pt(1+rng.IntN(size.Width-2), size.Height-1), true
	case geom.East:
		return geom.Pt(0, 1+rng.IntN(size.Height-2)), true
	case geom.West:
		return geom.Pt(size.Width-1, 1+rng.IntN(size.Height-2)), true
	default:
		return geom.Point{}, false
	}
}
