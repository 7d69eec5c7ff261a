package recipe

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dungenlab/dungen/pkg/cache"
	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/observability"
	"github.com/dungenlab/dungen/pkg/render"
)

// Formats the runner can produce.
const (
	FormatASCII = "ascii"
	FormatJSON  = "json"
	FormatDOT   = "dot"
	FormatSVG   = "svg"
	FormatPNG   = "png"
)

// Options configures one generation run.
type Options struct {
	Recipe *Recipe

	// Seed overrides the recipe's seed when non-nil.
	Seed *uint64

	// Formats selects rendered artifacts. Empty means FormatASCII.
	Formats []string

	// Flat renders the composite dungeon through sub-map embeds
	// instead of the root map alone.
	Flat bool

	// Detailed includes coordinates and sizes in graph labels.
	Detailed bool

	// Refresh bypasses the cache and overwrites it with fresh results.
	Refresh bool

	Logger *log.Logger
}

// ValidateAndSetDefaults checks options and fills defaults in place.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Recipe == nil {
		return fmt.Errorf("options: no recipe")
	}
	if err := o.Recipe.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatASCII}
	}
	for _, f := range o.Formats {
		switch f {
		case FormatASCII, FormatJSON, FormatDOT, FormatSVG, FormatPNG:
		default:
			return fmt.Errorf("options: unknown format %q", f)
		}
	}
	return nil
}

// seed returns the effective seed for this run.
func (o *Options) seed() uint64 {
	if o.Seed != nil {
		return *o.Seed
	}
	return o.Recipe.Seed
}

// Result carries everything one run produced.
type Result struct {
	// RunID uniquely identifies this run for logs and API responses.
	RunID string

	Registry *dungeon.Registry
	Root     dungeon.Handle

	// DungeonHash is the hash of the serialized dungeon, usable as a
	// stable identifier for derived artifacts.
	DungeonHash string

	// Artifacts maps format name to rendered bytes.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records per-stage timing and dungeon shape.
type Stats struct {
	Seed         uint64
	GenerateTime time.Duration
	RenderTime   time.Duration
	MapCount     int
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	GenerateHit bool
	RenderHit   bool
}

// Runner executes recipes with caching. It is stateless apart from the
// cache and logger, so one Runner can serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the default keyer, and a nil logger uses the package default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Seed = opts.seed()

	genStart := time.Now()
	observability.Run().OnGenerateStart(ctx, opts.Recipe.Name, opts.seed())
	reg, root, genHit, err := r.generate(ctx, opts)
	observability.Run().OnGenerateComplete(ctx, opts.Recipe.Name, opts.seed(), regLen(reg), time.Since(genStart), err)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Registry = reg
	result.Root = root
	result.Stats.GenerateTime = time.Since(genStart)
	result.Stats.MapCount = reg.Len()
	result.CacheInfo.GenerateHit = genHit

	if data, err := render.MarshalDungeon(reg, root); err == nil {
		result.DungeonHash = cache.Hash(data)
	}

	r.Logger.Info("generated dungeon",
		"run", result.RunID,
		"recipe", opts.Recipe.Name,
		"seed", result.Stats.Seed,
		"maps", result.Stats.MapCount,
		"cached", genHit,
		"duration", result.Stats.GenerateTime)

	renderStart := time.Now()
	observability.Run().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.renderArtifacts(ctx, reg, root, result.DungeonHash, opts)
	observability.Run().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"run", result.RunID,
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// generate builds the dungeon, consulting the cache first.
func (r *Runner) generate(ctx context.Context, opts Options) (*dungeon.Registry, dungeon.Handle, bool, error) {
	canonical, err := opts.Recipe.Canonical()
	if err != nil {
		return nil, 0, false, err
	}
	key := r.Keyer.DungeonKey(cache.Hash(canonical), opts.seed())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			reg, root, err := render.ReadDungeon(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "dungeon")
				return reg, root, true, nil
			}
			// Corrupt entry, fall through to regenerate.
		}
		observability.Cache().OnCacheMiss(ctx, "dungeon")
	}

	reg, root := Build(opts.Recipe, opts.seed())

	if data, err := render.MarshalDungeon(reg, root); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLDungeon)
	}
	return reg, root, false, nil
}

// renderArtifacts renders all requested formats, serving the whole set
// from cache only when every format is present.
func (r *Runner) renderArtifacts(ctx context.Context, reg *dungeon.Registry, root dungeon.Handle, dungeonHash string, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	if !opts.Refresh {
		allCached := true
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(dungeonHash, r.artifactOpts(format, opts))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				allCached = false
				break
			}
			artifacts[format] = data
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
		clear(artifacts)
	}

	for _, format := range opts.Formats {
		data, err := r.renderOne(ctx, reg, root, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(dungeonHash, r.artifactOpts(format, opts))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}
	return artifacts, false, nil
}

func (r *Runner) renderOne(ctx context.Context, reg *dungeon.Registry, root dungeon.Handle, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatASCII:
		if opts.Flat {
			return []byte(render.ASCIIFlat(reg, root)), nil
		}
		var out string
		reg.Read(root, func(m *dungeon.Map) { out = render.ASCII(m) })
		return []byte(out), nil
	case FormatJSON:
		return render.MarshalDungeon(reg, root)
	case FormatDOT:
		return []byte(render.ToDOT(reg, root, render.DotOptions{Detailed: opts.Detailed})), nil
	case FormatSVG:
		dot := render.ToDOT(reg, root, render.DotOptions{Detailed: opts.Detailed})
		return render.RenderSVG(ctx, dot)
	case FormatPNG:
		dot := render.ToDOT(reg, root, render.DotOptions{Detailed: opts.Detailed})
		return render.RenderPNG(ctx, dot)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func (r *Runner) artifactOpts(format string, opts Options) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Flat:     opts.Flat && format == FormatASCII,
		Detailed: opts.Detailed && slices.Contains([]string{FormatDOT, FormatSVG, FormatPNG}, format),
	}
}

// regLen tolerates the nil registry of a failed generate stage.
func regLen(reg *dungeon.Registry) int {
	if reg == nil {
		return 0
	}
	return reg.Len()
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
