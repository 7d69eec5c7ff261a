package gen

import (
	"testing"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

func TestEdgePortalsCount(t *testing.T) {
	rng := geom.NewRand(1)
	for i := 0; i < 100; i++ {
		reg := dungeon.NewRegistry()
		want := geom.NewCountRange(rng, 2, 5).ProvideCount()

		root := NewWith(reg, dungeon.NewMapProvider()).
			Gen(NewEmptyRoom(geom.Sz(12, 8))).
			Gen(NewEdgePortals(rng, geom.Count(want), dungeon.NewMapProvider())).
			Build()

		reg.Read(root, func(m *dungeon.Map) {
			if m.PortalCount() != want {
				t.Fatalf("PortalCount() = %d, want %d", m.PortalCount(), want)
			}
		})
		// One fresh target map per portal, plus the root.
		if reg.Len() != want+1 {
			t.Fatalf("registry holds %d maps, want %d", reg.Len(), want+1)
		}
	}
}

func TestEdgePortalsOnEdgesExcludingCorners(t *testing.T) {
	rng := geom.NewRand(2)
	reg := dungeon.NewRegistry()
	size := geom.Sz(8, 6)

	root := NewWith(reg, dungeon.NewMapProvider()).
		Gen(NewEmptyRoom(size)).
		Gen(NewEdgePortals(rng, geom.Count(200), dungeon.NewMapProvider())).
		Build()

	corners := map[geom.Point]bool{
		geom.Pt(0, 0):                           true,
		geom.Pt(size.Width-1, 0):                true,
		geom.Pt(0, size.Height-1):               true,
		geom.Pt(size.Width-1, size.Height-1):    true,
	}

	reg.Read(root, func(m *dungeon.Map) {
		for _, p := range m.Portals() {
			onEdge := p.LocalPos.X == 0 || p.LocalPos.X == size.Width-1 ||
				p.LocalPos.Y == 0 || p.LocalPos.Y == size.Height-1
			if !onEdge {
				t.Fatalf("portal at %v not on an edge", p.LocalPos)
			}
			if corners[p.LocalPos] {
				t.Fatalf("portal at corner %v", p.LocalPos)
			}
			if m.TileAt(p.LocalPos) != dungeon.TilePortal {
				t.Fatalf("no portal tile at %v", p.LocalPos)
			}

			// Facing must point inward from the edge the portal sits on.
			switch {
			case p.LocalPos.X == 0 && p.Facing != geom.East,
				p.LocalPos.X == size.Width-1 && p.Facing != geom.West,
				p.LocalPos.Y == 0 && p.Facing != geom.South,
				p.LocalPos.Y == size.Height-1 && p.Facing != geom.North:
				t.Fatalf("portal at %v faces %v", p.LocalPos, p.Facing)
			}
		}
	})
}

func TestEdgePortalsDegenerateMapDeclines(t *testing.T) {
	rng := geom.NewRand(3)
	tests := []geom.Size{geom.Sz(0, 0), geom.Sz(2, 8), geom.Sz(8, 2), geom.Sz(2, 2)}

	for _, size := range tests {
		reg := dungeon.NewRegistry()
		root := NewWith(reg, dungeon.NewMapProvider()).
			Gen(NewEmptyRoom(size)).
			Gen(NewEdgePortals(rng, geom.Count(5), dungeon.NewMapProvider())).
			Build()

		reg.Read(root, func(m *dungeon.Map) {
			if m.PortalCount() != 0 {
				t.Errorf("size %v: PortalCount() = %d, want 0", size, m.PortalCount())
			}
		})
		if reg.Len() != 1 {
			t.Errorf("size %v: registry grew to %d maps, want 1", size, reg.Len())
		}
	}
}
