package dungeon

import (
	"slices"

	"github.com/dungenlab/dungen/pkg/geom"
)

// Map is the unit of generation: a sparse tile grid plus the map's outgoing
// portals and embedded sub-maps.
//
// Storage is sparse: only written cells are held, and unwritten cells read
// as TileVoid. The map's size is the bounding extent of everything written
// so far and grows as generators set tiles, so a fresh map has zero size
// and no explicit bounds need to be declared up front.
//
// Map itself is not safe for concurrent use; all shared access goes through
// the Registry, which guards each map with its own lock.
type Map struct {
	tiles   map[geom.Point]TileType
	size    geom.Size
	portals []Portal
	subMaps []SubMap
	invalid bool
}

// NewMap creates an empty, unbounded map.
func NewMap() *Map {
	return &Map{tiles: make(map[geom.Point]TileType)}
}

// Size returns the bounding extent of all written tiles.
func (m *Map) Size() geom.Size { return m.size }

// Area returns the map's bounds as an origin-anchored area.
func (m *Map) Area() geom.Area { return geom.AreaOf(m.size) }

// TileAt returns the tile at p. Unwritten cells read as TileVoid.
func (m *Map) TileAt(p geom.Point) TileType { return m.tiles[p] }

// SetTile writes the tile at p, replacing any prior value, and grows the
// map's size to cover p. Positions with negative coordinates do not grow
// the bounds.
func (m *Map) SetTile(p geom.Point, t TileType) {
	m.tiles[p] = t
	if p.X+1 > m.size.Width {
		m.size.Width = p.X + 1
	}
	if p.Y+1 > m.size.Height {
		m.size.Height = p.Y + 1
	}
}

// PortalCount returns the number of outgoing portals.
func (m *Map) PortalCount() int { return len(m.portals) }

// Portals returns a copy of the portal list in insertion order.
// Insertion order is significant: traversal combinators visit portal
// targets in exactly this order.
func (m *Map) Portals() []Portal { return slices.Clone(m.portals) }

// PortalAt returns a pointer to the i-th portal for in-place mutation.
// The pointer is only valid until the next AddPortal call.
func (m *Map) PortalAt(i int) *Portal { return &m.portals[i] }

// AddPortal appends a portal and writes a TilePortal at its local position,
// keeping the portal record and its tile paired.
func (m *Map) AddPortal(p Portal) {
	m.portals = append(m.portals, p)
	m.SetTile(p.LocalPos, TilePortal)
}

// SubMapCount returns the number of embedded sub-maps.
func (m *Map) SubMapCount() int { return len(m.subMaps) }

// SubMaps returns a copy of the sub-map list in insertion order.
func (m *Map) SubMaps() []SubMap { return slices.Clone(m.subMaps) }

// AddSubMap embeds the target map at the given offset.
func (m *Map) AddSubMap(offset geom.Point, target Handle) {
	m.subMaps = append(m.subMaps, SubMap{Offset: offset, Target: target})
}

// Invalid reports whether the map has been rejected during retry-based
// placement. Invalid maps keep their handle but must not be used further.
func (m *Map) Invalid() bool { return m.invalid }
