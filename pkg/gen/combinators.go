package gen

import (
	"sync"

	"github.com/dungenlab/dungen/pkg/dungeon"
)

// Sequential applies a list of generators in order to the same target.
type Sequential struct {
	gens []Generator
}

// NewSequential creates a generator that runs gens in the given order.
func NewSequential(gens ...Generator) *Sequential {
	return &Sequential{gens: gens}
}

// Apply runs each generator against h in order.
func (s *Sequential) Apply(r *dungeon.Registry, h dungeon.Handle) {
	for _, g := range s.gens {
		g.Apply(r, h)
	}
}

// ApplyPlaced runs each generator's placed entry point against h in order.
func (s *Sequential) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) {
	for _, g := range s.gens {
		applyPlaced(g, r, h)
	}
}

// Predicate gates a conditional generator on the current state of a map.
type Predicate func(r *dungeon.Registry, h dungeon.Handle) bool

// If applies its inner generator only when the predicate holds for the
// target map. A common predicate is IfUngenerated, which skips maps that
// already have content.
type If struct {
	pred Predicate
	gen  Generator
}

// NewIf creates a predicate-gated generator.
func NewIf(pred Predicate, g Generator) *If {
	return &If{pred: pred, gen: g}
}

// IfUngenerated is a Predicate that holds while the map still has its
// zero/default size, i.e. nothing has been generated on it yet.
func IfUngenerated(r *dungeon.Registry, h dungeon.Handle) bool {
	var empty bool
	r.Read(h, func(m *dungeon.Map) { empty = m.Size().IsZero() })
	return empty
}

// Apply runs the inner generator if the predicate holds.
func (i *If) Apply(r *dungeon.Registry, h dungeon.Handle) {
	if i.pred(r, h) {
		i.gen.Apply(r, h)
	}
}

// ApplyPlaced runs the inner generator's placed entry point if the
// predicate holds.
func (i *If) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) {
	if i.pred(r, h) {
		applyPlaced(i.gen, r, h)
	}
}

// TraversePortals applies its inner generator to each portal target of the
// current map: one hop, not recursive. The target handles are snapshotted
// before the first application, so the inner generator is free to add or
// remove portals on the current map without affecting the ongoing
// traversal. Targets are visited in portal insertion order.
type TraversePortals struct {
	gen Generator
}

// NewTraversePortals creates a one-hop portal traversal around g.
func NewTraversePortals(g Generator) *TraversePortals {
	return &TraversePortals{gen: g}
}

// Apply applies the inner generator to each portal target of h.
func (t *TraversePortals) Apply(r *dungeon.Registry, h dungeon.Handle) {
	for _, target := range portalTargets(r, h) {
		applyPlaced(t.gen, r, target)
	}
}

// ApplyPlaced is identical to Apply; hopping is position-independent.
func (t *TraversePortals) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) {
	t.Apply(r, h)
}

// TraverseThisAndPortals applies its inner generator to the current map,
// then to each one-hop portal target. The current map gets the plain entry
// point; targets get the placed entry point.
type TraverseThisAndPortals struct {
	gen InstancedGenerator
}

// NewTraverseThisAndPortals creates a self-then-neighbors traversal around g.
func NewTraverseThisAndPortals(g InstancedGenerator) *TraverseThisAndPortals {
	return &TraverseThisAndPortals{gen: g}
}

// Apply applies the inner generator to h and then to each portal target.
func (t *TraverseThisAndPortals) Apply(r *dungeon.Registry, h dungeon.Handle) {
	t.gen.Apply(r, h)
	for _, target := range portalTargets(r, h) {
		t.gen.ApplyPlaced(r, target)
	}
}

// ApplyPlaced applies the placed entry point to h and each portal target.
func (t *TraverseThisAndPortals) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) {
	t.gen.ApplyPlaced(r, h)
	for _, target := range portalTargets(r, h) {
		t.gen.ApplyPlaced(r, target)
	}
}

// portalTargets snapshots the portal targets of h in insertion order.
func portalTargets(r *dungeon.Registry, h dungeon.Handle) []dungeon.Handle {
	var targets []dungeon.Handle
	r.Read(h, func(m *dungeon.Map) {
		for _, p := range m.Portals() {
			targets = append(targets, p.Target)
		}
	})
	return targets
}

// VisitOnce runs its inner generator at most once per handle over the
// guard's lifetime. The visited set is shared across every invocation of
// the same VisitOnce instance and across both entry points, and the
// check-and-insert is a single critical section, so two concurrent
// traversals cannot both see "not yet visited" for the same handle.
//
// This is the guard that makes traversal over a cyclic portal graph
// terminate: wrap the recursion in a VisitOnce and a revisited handle
// skips the inner generator entirely, recursion included.
type VisitOnce struct {
	mu      sync.Mutex
	visited map[dungeon.Handle]struct{}
	gen     Generator
}

// NewVisitOnce creates a visit-once guard around g with a fresh visited set.
func NewVisitOnce(g Generator) *VisitOnce {
	return &VisitOnce{visited: make(map[dungeon.Handle]struct{}), gen: g}
}

// Apply runs the inner generator unless h has already been visited.
func (v *VisitOnce) Apply(r *dungeon.Registry, h dungeon.Handle) {
	if v.checkAndMark(h) {
		return
	}
	v.gen.Apply(r, h)
}

// ApplyPlaced runs the inner generator's placed entry point unless h has
// already been visited.
func (v *VisitOnce) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) {
	if v.checkAndMark(h) {
		return
	}
	applyPlaced(v.gen, r, h)
}

// checkAndMark atomically records h as visited and reports whether it had
// been seen before.
func (v *VisitOnce) checkAndMark(h dungeon.Handle) (seen bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.visited[h]; ok {
		return true
	}
	v.visited[h] = struct{}{}
	return false
}
