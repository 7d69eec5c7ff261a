package gen

import (
	"math/rand/v2"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// EdgePortals adds one or more one-way portals to random non-corner edge
// tiles of the target map, each leading to a fresh map from the provider.
//
// The edge is chosen with probability proportional to its length: a portal
// lands on the left or right edge with odds height/(width+height), on the
// top or bottom edge otherwise, and the two edges of the chosen pair are
// equally likely. Portals face inward: a portal on the left edge faces
// east, one on the top edge faces south, and so on.
//
// Maps narrower or shorter than 3 tiles cannot hold a non-corner edge
// portal; the generator declines without mutating anything.
type EdgePortals struct {
	count   geom.CountProvider
	provide dungeon.MapProvider
	rng     *rand.Rand
}

// NewEdgePortals creates an edge-portal generator. The provider supplies
// the target map for each new portal and must not be nil.
func NewEdgePortals(rng *rand.Rand, count geom.CountProvider, provide dungeon.MapProvider) *EdgePortals {
	if provide == nil {
		panic("gen: EdgePortals requires a map provider")
	}
	return &EdgePortals{count: count, provide: provide, rng: rng}
}

// Apply adds the portals to the map at h.
func (e *EdgePortals) Apply(r *dungeon.Registry, h dungeon.Handle) {
	var size geom.Size
	r.Read(h, func(m *dungeon.Map) { size = m.Size() })
	if size.Width < 3 || size.Height < 3 {
		return
	}

	count := e.count.ProvideCount()
	for i := 0; i < count; i++ {
		local, facing := e.edgeTile(size)
		target := e.provide(r)
		r.Write(h, func(m *dungeon.Map) {
			m.AddPortal(dungeon.Portal{
				LocalPos:     local,
				Facing:       facing,
				Target:       target,
				TargetFacing: facing.Opposite(),
			})
		})
	}
}

// ApplyPlaced is identical to Apply; portal placement is position-independent.
func (e *EdgePortals) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) { e.Apply(r, h) }

// edgeTile picks a random non-corner edge tile and its inward facing.
func (e *EdgePortals) edgeTile(size geom.Size) (geom.Point, geom.Direction) {
	vertical := e.rng.IntN(size.Width+size.Height) < size.Height
	if vertical {
		y := 1 + e.rng.IntN(size.Height-2)
		if e.rng.IntN(2) == 0 {
			return geom.Pt(0, y), geom.East
		}
		return geom.Pt(size.Width-1, y), geom.West
	}
	x := 1 + e.rng.IntN(size.Width-2)
	if e.rng.IntN(2) == 0 {
		return geom.Pt(x, 0), geom.South
	}
	return geom.Pt(x, size.Height-1), geom.North
}
