package gen

import (
	"sync"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// PortalFilter selects which portals a graph-walking generator follows.
// A nil filter follows every portal.
type PortalFilter func(*dungeon.Portal) bool

// MergePortalMaps folds the subgraph reachable through portals into the
// root map's coordinate space as sub-map references, breadth-first, up to a
// recursion depth of hops.
//
// The embedding offset for a portal's target is local position minus
// arrival position, so that re-traversing the portal from the flattened
// view lands on the correct tile; offsets accumulate additively as the walk
// descends. Every embedded sub-map is registered on the root map, not on
// intermediate maps, so depth-2 merges of A→B→C embed both B and C in A.
//
// A visited set, shared across calls to the same generator instance,
// guarantees each map is embedded at most once and bounds the walk on
// cyclic graphs.
type MergePortalMaps struct {
	depth  int
	filter PortalFilter

	mu      sync.Mutex
	visited map[dungeon.Handle]struct{}
}

// NewMergePortalMaps creates a merge generator walking up to depth portal
// hops. A nil filter follows every portal.
func NewMergePortalMaps(depth int, filter PortalFilter) *MergePortalMaps {
	return &MergePortalMaps{
		depth:   depth,
		filter:  filter,
		visited: make(map[dungeon.Handle]struct{}),
	}
}

type mergeFrame struct {
	offset geom.Point
	depth  int
	target dungeon.Handle
}

// Apply merges portal-reachable maps into the map at h.
func (g *MergePortalMaps) Apply(r *dungeon.Registry, h dungeon.Handle) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, seen := g.visited[h]; seen {
		return
	}
	g.visited[h] = struct{}{}
	if g.depth == 0 {
		return
	}

	queue := g.embed(r, h, h, geom.Point{}, g.depth)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if f.depth == 0 {
			continue
		}
		queue = append(queue, g.embed(r, h, f.target, f.offset, f.depth)...)
	}
}

// ApplyPlaced is identical to Apply; merging is position-independent.
func (g *MergePortalMaps) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) { g.Apply(r, h) }

// embed walks the portals of from, registers each unvisited qualifying
// target as a sub-map on root at base plus the portal's own offset, and
// returns the frames to continue from. Callers hold g.mu.
func (g *MergePortalMaps) embed(r *dungeon.Registry, root, from dungeon.Handle, base geom.Point, depth int) []mergeFrame {
	var next []mergeFrame
	r.Read(from, func(m *dungeon.Map) {
		for _, p := range m.Portals() {
			if g.filter != nil && !g.filter(&p) {
				continue
			}
			if _, seen := g.visited[p.Target]; seen {
				continue
			}
			g.visited[p.Target] = struct{}{}
			offset := base.Add(p.LocalPos.Sub(p.TargetPos))
			next = append(next, mergeFrame{offset: offset, depth: depth - 1, target: p.Target})
		}
	})
	r.Write(root, func(m *dungeon.Map) {
		for _, f := range next {
			m.AddSubMap(f.offset, f.target)
		}
	})
	return next
}
