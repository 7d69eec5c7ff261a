package gen

import (
	"fmt"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// DefaultMaxAttempts bounds the sample/validate loop for a single sub-map
// placement. The loop as originally conceived had no bound, which turns an
// always-rejecting validity check into a hang; exhausting the bound is
// treated as a programming error in the caller's predicate or providers and
// panics.
const DefaultMaxAttempts = 1000

// ValidityCheck accepts or rejects a candidate sub-map at a position.
// Rejected candidates are invalidated in the registry and resampled.
type ValidityCheck func(pos geom.Point, h dungeon.Handle) bool

// PlacementSet describes one batch of sub-maps to place: how many, where,
// how to create them, what to generate on them, and how to validate them.
type PlacementSet struct {
	// Count yields the number of sub-maps this set places.
	Count geom.CountProvider
	// Position samples a candidate offset for each placement.
	Position geom.PositionProvider
	// Provide creates each candidate map. Optional; when nil the SubMaps
	// fallback provider is used.
	Provide dungeon.MapProvider
	// Gens run against every candidate map before validation.
	Gens []Generator
	// Valid accepts or rejects candidates for this set. Optional.
	Valid ValidityCheck
}

// SubMaps places generated maps as sub-maps of the target, sampling a
// position and a fresh candidate map for each required placement and
// retrying with a new candidate whenever a validity check rejects one.
// Rejected candidates are invalidated, never recycled.
//
// Each PlacementSet may carry its own provider, generators, and validity
// check; Fallback and GlobalGens and Valid apply across all sets. A
// placement set with neither its own provider nor a fallback is a
// programming error and panics.
type SubMaps struct {
	// Sets are processed in order.
	Sets []PlacementSet
	// Fallback provides candidate maps for sets without their own provider.
	Fallback dungeon.MapProvider
	// GlobalGens run against every candidate map of every set, after the
	// set's own generators.
	GlobalGens []Generator
	// Valid is an additional validity check applied to every candidate.
	Valid ValidityCheck
	// MaxAttempts bounds the retry loop per placement; zero means
	// DefaultMaxAttempts.
	MaxAttempts int
}

// NewSubMaps creates a placement generator from one or more sets.
func NewSubMaps(fallback dungeon.MapProvider, sets ...PlacementSet) *SubMaps {
	return &SubMaps{Sets: sets, Fallback: fallback}
}

// Apply places sub-maps on the map at h.
func (s *SubMaps) Apply(r *dungeon.Registry, h dungeon.Handle) {
	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for _, set := range s.Sets {
		provide := set.Provide
		if provide == nil {
			provide = s.Fallback
		}
		if provide == nil {
			panic("gen: SubMaps placement set has no map provider and no fallback")
		}

		count := set.Count.ProvideCount()
		for i := 0; i < count; i++ {
			pos, candidate := s.place(r, set, provide, maxAttempts)
			r.Write(h, func(m *dungeon.Map) { m.AddSubMap(pos, candidate) })
		}
	}
}

// ApplyPlaced is identical to Apply; placement positions are local offsets.
func (s *SubMaps) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) { s.Apply(r, h) }

// place samples candidates until one passes both validity checks.
func (s *SubMaps) place(r *dungeon.Registry, set PlacementSet, provide dungeon.MapProvider, maxAttempts int) (geom.Point, dungeon.Handle) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		pos := set.Position.ProvidePosition()
		candidate := provide(r)

		for _, g := range set.Gens {
			g.Apply(r, candidate)
		}
		for _, g := range s.GlobalGens {
			g.Apply(r, candidate)
		}

		if set.Valid != nil && !set.Valid(pos, candidate) {
			r.Invalidate(candidate)
			continue
		}
		if s.Valid != nil && !s.Valid(pos, candidate) {
			r.Invalidate(candidate)
			continue
		}
		return pos, candidate
	}
	panic(fmt.Sprintf("gen: sub-map placement exhausted %d attempts; validity check rejects every candidate", maxAttempts))
}
