package gen

import "github.com/dungenlab/dungen/pkg/dungeon"

// Pipeline chains generators against one root map.
//
// Sequencing is strict: each Gen call runs its generator to completion
// before returning, so generator N+1 always observes the complete effect of
// generator N. The pipeline never reorders, batches, or parallelizes the
// steps it is given; that is the single ordering guarantee the rest of the
// system relies on.
type Pipeline struct {
	reg  *dungeon.Registry
	root dungeon.Handle
}

// New creates a pipeline over an existing root map.
func New(reg *dungeon.Registry, root dungeon.Handle) *Pipeline {
	return &Pipeline{reg: reg, root: root}
}

// NewWith creates a pipeline whose root map comes from the provider.
func NewWith(reg *dungeon.Registry, provide dungeon.MapProvider) *Pipeline {
	return &Pipeline{reg: reg, root: provide(reg)}
}

// Gen applies g to the root map and returns the pipeline for chaining.
func (p *Pipeline) Gen(g Generator) *Pipeline {
	g.Apply(p.reg, p.root)
	return p
}

// Root returns the root handle without ending the pipeline.
func (p *Pipeline) Root() dungeon.Handle { return p.root }

// Registry returns the registry the pipeline operates on.
func (p *Pipeline) Registry() *dungeon.Registry { return p.reg }

// Build returns the root handle. The pipeline can be discarded afterwards;
// the generated maps live in the registry.
func (p *Pipeline) Build() dungeon.Handle { return p.root }
