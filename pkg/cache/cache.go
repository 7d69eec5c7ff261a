// Package cache provides artifact caching for generation runs.
//
// Generating a dungeon from a recipe is deterministic given a seed, so
// the serialized dungeon and its rendered artifacts (ASCII, SVG, PNG,
// JSON) can be cached keyed by recipe hash, seed, and format. Three
// backends are provided:
//   - file: directory-based cache for CLI usage
//   - redis: shared cache for server deployments
//   - null: disabled caching for tests and one-off runs
package cache

import (
	"context"
	"time"
)

// TTLs per artifact class. Generation is deterministic for a given
// recipe and seed, so entries only expire to bound disk usage.
const (
	TTLDungeon  = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface all cache backends implement.
// A miss is reported through the bool return, not an error.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the artifacts a generation run produces.
type Keyer interface {
	// DungeonKey keys the serialized dungeon for a recipe and seed.
	DungeonKey(recipeHash string, seed uint64) string

	// ArtifactKey keys a rendered artifact derived from a dungeon.
	ArtifactKey(dungeonHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts distinguishes rendered artifacts of the same dungeon.
type ArtifactKeyOpts struct {
	Format   string // "ascii", "dot", "svg", "png", "json"
	Flat     bool   // composite rendering through sub-map embeds
	Detailed bool   // detailed graph labels
}

// DefaultKeyer generates keys with stable prefixes and hashed options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DungeonKey generates a key for dungeon caching.
func (k *DefaultKeyer) DungeonKey(recipeHash string, seed uint64) string {
	return hashKey("dungeon", recipeHash, seed)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(dungeonHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", dungeonHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so concurrent users of a
// shared backend get separate namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
// A nil inner keyer falls back to [NewDefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DungeonKey generates a prefixed dungeon key.
func (k *ScopedKeyer) DungeonKey(recipeHash string, seed uint64) string {
	return k.prefix + k.inner.DungeonKey(recipeHash, seed)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(dungeonHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(dungeonHash, opts)
}
