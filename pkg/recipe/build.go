package recipe

import (
	"math/rand/v2"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/gen"
	"github.com/dungenlab/dungen/pkg/geom"
)

// Build materializes the recipe into a registry for the given seed and
// runs the generation pipeline. The same recipe and seed always produce
// the same dungeon.
//
// Stage order is fixed: root room, edge portals, rooms behind portals,
// reciprocation, scattered sub-maps, merge. Sections absent from the
// recipe skip their stage.
func Build(r *Recipe, seed uint64) (*dungeon.Registry, dungeon.Handle) {
	rng := geom.NewRand(seed)
	reg := dungeon.NewRegistry()
	root := reg.Insert(dungeon.NewMap())

	p := gen.New(reg, root)
	p.Gen(roomGen(geom.Sz(r.Root.Width, r.Root.Height), r.Root.Walled))

	if r.Portals != nil {
		p.Gen(gen.NewEdgePortals(rng,
			geom.NewCountRange(rng, r.Portals.Min, r.Portals.Max),
			dungeon.NewMapProvider()))
		if r.Rooms != nil {
			p.Gen(gen.NewTraversePortals(roomGen(roomSize(rng, r.Rooms), r.Rooms.Walled)))
		}
		if r.Portals.Reciprocate {
			p.Gen(gen.NewTraverseThisAndPortals(gen.NewReciprocatePortals(rng)))
		}
	}

	if len(r.SubMaps) > 0 {
		p.Gen(submapsGen(rng, r))
	}

	if r.Merge != nil && r.Merge.Enabled {
		p.Gen(gen.NewMergePortalMaps(r.Merge.Depth, nil))
	}

	p.Build()
	return reg, root
}

func roomGen(area geom.AreaProvider, walled bool) gen.Generator {
	return gen.NewRoom(area, walled)
}

// roomSize resamples on every placement, so rooms behind different
// portals get independent sizes.
func roomSize(rng *rand.Rand, rr *RoomRange) geom.SizeRange {
	return geom.NewSizeRange(rng,
		geom.Sz(rr.MinWidth, rr.MinHeight),
		geom.Sz(rr.MaxWidth, rr.MaxHeight))
}

func submapsGen(rng *rand.Rand, r *Recipe) gen.Generator {
	sets := make([]gen.PlacementSet, 0, len(r.SubMaps))
	for _, s := range r.SubMaps {
		sets = append(sets, gen.PlacementSet{
			Count:    geom.NewCountRange(rng, s.CountMin, s.CountMax),
			Position: geom.NewRandomPosition(rng, geom.Area{Size: geom.Sz(r.Root.Width, r.Root.Height)}),
			Gens: []gen.Generator{
				gen.NewRoom(geom.NewSizeRange(rng,
					geom.Sz(s.MinWidth, s.MinHeight),
					geom.Sz(s.MaxWidth, s.MaxHeight)), true),
			},
		})
	}
	return gen.NewSubMaps(dungeon.NewMapProvider(), sets...)
}
