package geom

import "math/rand/v2"

// NewRand creates a deterministic random source from a seed.
// All randomized providers and generators in dungen draw from a *rand.Rand
// so that a whole generation run is reproducible from a single seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// CountProvider yields how many of something a generator should produce,
// e.g. the number of edge portals or sub-maps to place.
type CountProvider interface {
	ProvideCount() int
}

// Count is a fixed CountProvider.
type Count int

// ProvideCount returns the fixed count.
func (c Count) ProvideCount() int { return int(c) }

// CountRange samples a count uniformly from [Min, Max], inclusive.
type CountRange struct {
	Min, Max int
	rng      *rand.Rand
}

// NewCountRange creates a CountRange drawing from rng.
func NewCountRange(rng *rand.Rand, min, max int) CountRange {
	return CountRange{Min: min, Max: max, rng: rng}
}

// ProvideCount samples from the range. A degenerate range (Max <= Min)
// always yields Min.
func (c CountRange) ProvideCount() int {
	if c.Max <= c.Min {
		return c.Min
	}
	return c.Min + c.rng.IntN(c.Max-c.Min+1)
}

// PositionProvider yields a position, e.g. where to embed a sub-map.
type PositionProvider interface {
	ProvidePosition() Point
}

// ProvidePosition returns the point itself, making Point a fixed provider.
func (p Point) ProvidePosition() Point { return p }

// RandomPosition samples positions uniformly from an area.
type RandomPosition struct {
	In  Area
	rng *rand.Rand
}

// NewRandomPosition creates a provider sampling uniformly inside in.
func NewRandomPosition(rng *rand.Rand, in Area) RandomPosition {
	return RandomPosition{In: in, rng: rng}
}

// ProvidePosition samples a point inside the area, edges included.
func (r RandomPosition) ProvidePosition() Point {
	p := r.In.Pos
	if r.In.Size.Width > 0 {
		p.X += r.rng.IntN(r.In.Size.Width)
	}
	if r.In.Size.Height > 0 {
		p.Y += r.rng.IntN(r.In.Size.Height)
	}
	return p
}

// SizeProvider yields an extent, e.g. how large a room to generate.
type SizeProvider interface {
	ProvideSize() Size
}

// ProvideSize returns the size itself, making Size a fixed provider.
func (s Size) ProvideSize() Size { return s }

// SizeRange samples both dimensions uniformly between Min and Max, inclusive.
type SizeRange struct {
	Min, Max Size
	rng      *rand.Rand
}

// NewSizeRange creates a SizeRange drawing from rng.
func NewSizeRange(rng *rand.Rand, min, max Size) SizeRange {
	return SizeRange{Min: min, Max: max, rng: rng}
}

// ProvideSize samples a size from the range.
func (s SizeRange) ProvideSize() Size {
	out := s.Min
	if s.Max.Width > s.Min.Width {
		out.Width += s.rng.IntN(s.Max.Width - s.Min.Width + 1)
	}
	if s.Max.Height > s.Min.Height {
		out.Height += s.rng.IntN(s.Max.Height - s.Min.Height + 1)
	}
	return out
}

// AreaProvider yields the rectangle a generator operates on. Providers that
// return a zero-size area signal "use the whole target map".
type AreaProvider interface {
	ProvideArea() Area
}

// ProvideArea returns the area itself, making Area a fixed provider.
func (a Area) ProvideArea() Area { return a }

// ProvideArea returns an origin-anchored area of this size.
func (s Size) ProvideArea() Area { return AreaOf(s) }

// ProvideArea returns an origin-anchored area with a sampled size.
func (s SizeRange) ProvideArea() Area { return AreaOf(s.ProvideSize()) }
