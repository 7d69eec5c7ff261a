// Package recipe turns declarative TOML generation recipes into
// executable pipelines, and runs them with artifact caching.
//
// A recipe describes a dungeon shape (root room, portal counts, room
// sizes, reciprocation, scattered sub-maps, merging) without naming
// generator types. [Build] materializes the recipe into a pipeline for
// a given seed, and [Runner] adds caching and rendered artifacts on
// top, shared between the CLI and the HTTP server.
package recipe

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Sentinel errors for recipe validation.
var (
	// ErrNoRoot is returned when a recipe has no root section.
	ErrNoRoot = errors.New("recipe has no root section")

	// ErrBadRange is returned when a min exceeds its max.
	ErrBadRange = errors.New("range minimum exceeds maximum")
)

// Recipe is the declarative description of a dungeon.
type Recipe struct {
	Name string `toml:"name"`

	// Seed is the default seed used when a run does not override it.
	Seed uint64 `toml:"seed"`

	Root    *Room      `toml:"root"`
	Portals *Portals   `toml:"portals"`
	Rooms   *RoomRange `toml:"rooms"`
	Merge   *Merge     `toml:"merge"`
	SubMaps []SubMaps  `toml:"submaps"`
}

// Room describes a fixed-size room.
type Room struct {
	Width  int  `toml:"width"`
	Height int  `toml:"height"`
	Walled bool `toml:"walled"`
}

// Portals describes edge portal generation on the root map.
type Portals struct {
	Min int `toml:"min"`
	Max int `toml:"max"`

	// Reciprocate adds a matching return portal on every target map.
	Reciprocate bool `toml:"reciprocate"`
}

// RoomRange describes rooms generated behind portals, with sizes drawn
// uniformly from the configured range.
type RoomRange struct {
	MinWidth  int  `toml:"min_width"`
	MaxWidth  int  `toml:"max_width"`
	MinHeight int  `toml:"min_height"`
	MaxHeight int  `toml:"max_height"`
	Walled    bool `toml:"walled"`
}

// Merge describes flattening the portal graph into sub-map embeds on
// the root.
type Merge struct {
	Enabled bool `toml:"enabled"`
	Depth   int  `toml:"depth"`
}

// SubMaps describes a batch of rooms scattered across the root map.
type SubMaps struct {
	CountMin  int `toml:"count_min"`
	CountMax  int `toml:"count_max"`
	MinWidth  int `toml:"min_width"`
	MaxWidth  int `toml:"max_width"`
	MinHeight int `toml:"min_height"`
	MaxHeight int `toml:"max_height"`
}

// Parse decodes and validates a TOML recipe.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadFile reads and parses a recipe file.
func LoadFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Validate checks ranges and cross-field constraints.
func (r *Recipe) Validate() error {
	if r.Root == nil {
		return ErrNoRoot
	}
	if r.Root.Width < 1 || r.Root.Height < 1 {
		return fmt.Errorf("root size %dx%d: both dimensions must be positive", r.Root.Width, r.Root.Height)
	}
	if p := r.Portals; p != nil {
		if p.Min < 0 || p.Min > p.Max {
			return fmt.Errorf("portals %d..%d: %w", p.Min, p.Max, ErrBadRange)
		}
		if r.Root.Width < 3 || r.Root.Height < 3 {
			return fmt.Errorf("root size %dx%d too small for edge portals (both dimensions must be at least 3)",
				r.Root.Width, r.Root.Height)
		}
	}
	if rr := r.Rooms; rr != nil {
		if rr.MinWidth < 1 || rr.MinWidth > rr.MaxWidth || rr.MinHeight < 1 || rr.MinHeight > rr.MaxHeight {
			return fmt.Errorf("rooms %dx%d..%dx%d: %w", rr.MinWidth, rr.MinHeight, rr.MaxWidth, rr.MaxHeight, ErrBadRange)
		}
	}
	if m := r.Merge; m != nil && m.Enabled && m.Depth < 1 {
		return fmt.Errorf("merge depth %d: must be at least 1", m.Depth)
	}
	for i, s := range r.SubMaps {
		if s.CountMin < 0 || s.CountMin > s.CountMax {
			return fmt.Errorf("submaps[%d] count %d..%d: %w", i, s.CountMin, s.CountMax, ErrBadRange)
		}
		if s.MinWidth < 1 || s.MinWidth > s.MaxWidth || s.MinHeight < 1 || s.MinHeight > s.MaxHeight {
			return fmt.Errorf("submaps[%d] size %dx%d..%dx%d: %w", i, s.MinWidth, s.MinHeight, s.MaxWidth, s.MaxHeight, ErrBadRange)
		}
	}
	return nil
}

// Canonical re-encodes the recipe as TOML for hashing. Field order is
// fixed by the struct, so two equal recipes produce identical bytes
// regardless of formatting in the source file.
func (r *Recipe) Canonical() ([]byte, error) {
	data, err := toml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode recipe: %w", err)
	}
	return data, nil
}
