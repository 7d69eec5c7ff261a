// Package gen provides the generator contract, the pipeline builder, and
// the composition operators that chain generation steps across a graph of
// portal-linked maps.
//
// # Generators
//
// A Generator is the unit of transformation: given a registry and a map
// handle it may rewrite tiles, add portals, and embed sub-maps. Generators
// compose; the traversal combinators (Sequential, If, TraversePortals,
// TraverseThisAndPortals, VisitOnce) wrap an inner generator and redefine
// where it runs without altering what it does.
//
// # Building a dungeon
//
//	reg := dungeon.NewRegistry()
//	rng := geom.NewRand(42)
//	root := gen.NewWith(reg, dungeon.NewMapProvider()).
//		Gen(gen.NewEmptyRoom(geom.Sz(12, 8))).
//		Gen(gen.NewWalledRoom(geom.Area{})).
//		Gen(gen.NewEdgePortals(rng, geom.NewCountRange(rng, 2, 5), dungeon.NewMapProvider())).
//		Gen(gen.NewTraversePortals(gen.NewSequential(
//			gen.NewEmptyRoom(geom.Sz(8, 6)),
//			gen.NewWalledRoom(geom.Area{}),
//		))).
//		Gen(gen.NewTraverseThisAndPortals(gen.NewReciprocatePortals(rng))).
//		Build()
//
// # Error handling
//
// Generators do not return errors. Programming errors (a placement set with
// no map provider, an invalid handle) panic; degenerate-but-legal input
// (zero-sized areas, maps too small to hold a non-corner portal) is a
// silent no-op; rejected candidates during retry-based placement are
// invalidated and resampled.
package gen

import "github.com/dungenlab/dungen/pkg/dungeon"

// Generator mutates the map identified by h. Implementations may follow
// portals through the registry to reach and mutate other maps.
type Generator interface {
	Apply(r *dungeon.Registry, h dungeon.Handle)
}

// PlacedGenerator applies to a map that is embedded at a known position,
// such as a portal target or a placed sub-map. Some generator chains only
// make sense against placed maps; combinators that hop through portals hand
// the targets to this entry point.
type PlacedGenerator interface {
	ApplyPlaced(r *dungeon.Registry, h dungeon.Handle)
}

// InstancedGenerator can run against either a free-standing or a placed
// map. All of the concrete generators in this package implement it.
type InstancedGenerator interface {
	Generator
	PlacedGenerator
}

// Func adapts a closure into an InstancedGenerator; both entry points run
// the same closure.
type Func func(r *dungeon.Registry, h dungeon.Handle)

// Apply implements Generator.
func (f Func) Apply(r *dungeon.Registry, h dungeon.Handle) { f(r, h) }

// ApplyPlaced implements PlacedGenerator.
func (f Func) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) { f(r, h) }

// applyPlaced dispatches to g's placed entry point when it has one, falling
// back to the plain entry point otherwise.
func applyPlaced(g Generator, r *dungeon.Registry, h dungeon.Handle) {
	if pg, ok := g.(PlacedGenerator); ok {
		pg.ApplyPlaced(r, h)
		return
	}
	g.Apply(r, h)
}
