package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// =============================================================================
// Dungeon Serialization API
// =============================================================================

// Dungeon is the canonical serialization format for a generated dungeon.
// Used for storage, caching, API responses, and re-import.
//
// The format is human-readable and designed for round-trip fidelity:
// generate → export → re-import produces an identical registry.
type Dungeon struct {
	Root int       `json:"root"`
	Maps []MapData `json:"maps"`
}

// MapData serializes one map. Tiles are stored as rows of runes in the
// same encoding ASCII rendering uses.
type MapData struct {
	Handle  int          `json:"handle"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Tiles   []string     `json:"tiles,omitempty"`
	Portals []PortalData `json:"portals,omitempty"`
	SubMaps []SubMapData `json:"sub_maps,omitempty"`
	Invalid bool         `json:"invalid,omitempty"`
}

// PortalData serializes one portal edge.
type PortalData struct {
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Facing       string `json:"facing"`
	Target       int    `json:"target"`
	TargetX      int    `json:"target_x"`
	TargetY      int    `json:"target_y"`
	TargetFacing string `json:"target_facing"`
}

// SubMapData serializes one sub-map embed.
type SubMapData struct {
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`
	Target  int `json:"target"`
}

// MarshalDungeon converts a registry to JSON bytes.
// Maps are ordered by handle for deterministic output.
func MarshalDungeon(r *dungeon.Registry, root dungeon.Handle) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDungeonTo(r, root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDungeon writes a registry as JSON to an io.Writer.
func WriteDungeon(r *dungeon.Registry, root dungeon.Handle, w io.Writer) error {
	return writeDungeonTo(r, root, w)
}

// WriteDungeonFile writes a registry to a JSON file.
// The file is created with 0644 permissions.
func WriteDungeonFile(r *dungeon.Registry, root dungeon.Handle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeDungeonTo(r, root, f)
}

// ReadDungeon decodes a JSON dungeon from an io.Reader into a fresh
// registry. Returns validation errors for malformed data.
func ReadDungeon(rd io.Reader) (*dungeon.Registry, dungeon.Handle, error) {
	var data Dungeon
	if err := json.NewDecoder(rd).Decode(&data); err != nil {
		return nil, 0, fmt.Errorf("decode: %w", err)
	}
	return ToRegistry(data)
}

// ReadDungeonFile reads a JSON file and returns the decoded registry.
func ReadDungeonFile(path string) (*dungeon.Registry, dungeon.Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDungeon(f)
}

// =============================================================================
// Conversion
// =============================================================================

// FromRegistry snapshots every map in the registry into the
// serialization format.
func FromRegistry(r *dungeon.Registry, root dungeon.Handle) Dungeon {
	out := Dungeon{Root: int(root)}
	for i := 0; i < r.Len(); i++ {
		h := dungeon.Handle(i)
		var md MapData
		r.Read(h, func(m *dungeon.Map) {
			md = snapshotMap(h, m)
		})
		out.Maps = append(out.Maps, md)
	}
	return out
}

// ToRegistry rebuilds a registry from serialized form. Map handles must
// be dense starting at zero, and every portal and sub-map target must
// name a map present in the data.
func ToRegistry(d Dungeon) (*dungeon.Registry, dungeon.Handle, error) {
	maps := slices.Clone(d.Maps)
	slices.SortFunc(maps, func(a, b MapData) int { return a.Handle - b.Handle })
	for i, md := range maps {
		if md.Handle != i {
			return nil, 0, fmt.Errorf("map handles not dense: want %d, got %d", i, md.Handle)
		}
	}
	if d.Root < 0 || d.Root >= len(maps) {
		return nil, 0, fmt.Errorf("root %d out of range (dungeon holds %d maps)", d.Root, len(maps))
	}

	r := dungeon.NewRegistry()
	for _, md := range maps {
		m, err := restoreMap(md, len(maps))
		if err != nil {
			return nil, 0, err
		}
		h := r.Insert(m)
		if md.Invalid {
			r.Invalidate(h)
		}
	}
	return r, dungeon.Handle(d.Root), nil
}

func snapshotMap(h dungeon.Handle, m *dungeon.Map) MapData {
	size := m.Size()
	md := MapData{
		Handle:  int(h),
		Width:   size.Width,
		Height:  size.Height,
		Invalid: m.Invalid(),
	}
	for y := 0; y < size.Height; y++ {
		var row strings.Builder
		for x := 0; x < size.Width; x++ {
			row.WriteRune(m.TileAt(geom.Pt(x, y)).Rune())
		}
		md.Tiles = append(md.Tiles, row.String())
	}
	for _, p := range m.Portals() {
		md.Portals = append(md.Portals, PortalData{
			X:            p.LocalPos.X,
			Y:            p.LocalPos.Y,
			Facing:       p.Facing.String(),
			Target:       int(p.Target),
			TargetX:      p.TargetPos.X,
			TargetY:      p.TargetPos.Y,
			TargetFacing: p.TargetFacing.String(),
		})
	}
	for _, s := range m.SubMaps() {
		md.SubMaps = append(md.SubMaps, SubMapData{
			OffsetX: s.Offset.X,
			OffsetY: s.Offset.Y,
			Target:  int(s.Target),
		})
	}
	return md
}

func restoreMap(md MapData, mapCount int) (*dungeon.Map, error) {
	m := dungeon.NewMap()
	for y, row := range md.Tiles {
		for x, r := range row {
			t, err := tileFromRune(r)
			if err != nil {
				return nil, fmt.Errorf("map %d tile (%d,%d): %w", md.Handle, x, y, err)
			}
			if t != dungeon.TileVoid {
				m.SetTile(geom.Pt(x, y), t)
			}
		}
	}
	// Re-establish recorded bounds even when the bottom-right extent of
	// the original map was void.
	if md.Width > 0 && md.Height > 0 {
		corner := geom.Pt(md.Width-1, md.Height-1)
		m.SetTile(corner, m.TileAt(corner))
	}
	for i, p := range md.Portals {
		if p.Target < 0 || p.Target >= mapCount {
			return nil, fmt.Errorf("map %d portal %d: target %d out of range", md.Handle, i, p.Target)
		}
		facing, err := directionFromString(p.Facing)
		if err != nil {
			return nil, fmt.Errorf("map %d portal %d: %w", md.Handle, i, err)
		}
		targetFacing, err := directionFromString(p.TargetFacing)
		if err != nil {
			return nil, fmt.Errorf("map %d portal %d: %w", md.Handle, i, err)
		}
		// The tile grid is authoritative. AddPortal stamps a portal tile,
		// but a later generator may have overwritten it before the dungeon
		// was serialized, so the recorded tile is restored afterwards.
		pos := geom.Pt(p.X, p.Y)
		recorded := m.TileAt(pos)
		m.AddPortal(dungeon.Portal{
			LocalPos:     pos,
			Facing:       facing,
			Target:       dungeon.Handle(p.Target),
			TargetPos:    geom.Pt(p.TargetX, p.TargetY),
			TargetFacing: targetFacing,
		})
		if recorded != dungeon.TilePortal {
			m.SetTile(pos, recorded)
		}
	}
	for i, s := range md.SubMaps {
		if s.Target < 0 || s.Target >= mapCount {
			return nil, fmt.Errorf("map %d sub-map %d: target %d out of range", md.Handle, i, s.Target)
		}
		m.AddSubMap(geom.Pt(s.OffsetX, s.OffsetY), dungeon.Handle(s.Target))
	}
	return m, nil
}

func writeDungeonTo(r *dungeon.Registry, root dungeon.Handle, w io.Writer) error {
	out := FromRegistry(r, root)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func tileFromRune(r rune) (dungeon.TileType, error) {
	switch r {
	case ' ':
		return dungeon.TileVoid, nil
	case '.':
		return dungeon.TileFloor, nil
	case '#':
		return dungeon.TileWall, nil
	case '+':
		return dungeon.TilePortal, nil
	}
	return dungeon.TileVoid, fmt.Errorf("unknown tile rune %q", r)
}

func directionFromString(s string) (geom.Direction, error) {
	for d := geom.North; d <= geom.NorthWest; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
