package gen

import (
	"slices"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// FillTiles fills a rectangular area of the target map with one tile type.
// A zero-size area means "the target map's whole current bounds"; if those
// are also zero the generator is a no-op.
type FillTiles struct {
	area geom.AreaProvider
	tile dungeon.TileType
}

// NewFillTiles creates a generator filling the provided area with tile.
func NewFillTiles(area geom.AreaProvider, tile dungeon.TileType) *FillTiles {
	return &FillTiles{area: area, tile: tile}
}

// Apply fills the area on the map at h.
func (f *FillTiles) Apply(r *dungeon.Registry, h dungeon.Handle) {
	r.Write(h, func(m *dungeon.Map) {
		a := resolveArea(f.area, m)
		if a.Size.IsZero() {
			return
		}
		for y := a.Pos.Y; y <= a.Bottom(); y++ {
			for x := a.Pos.X; x <= a.Right(); x++ {
				m.SetTile(geom.Pt(x, y), f.tile)
			}
		}
	})
}

// ApplyPlaced is identical to Apply; filling is position-independent.
func (f *FillTiles) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) { f.Apply(r, h) }

// NewEmptyRoom creates a generator that floors the provided area,
// expanding an unbounded map to that extent.
func NewEmptyRoom(area geom.AreaProvider) *FillTiles {
	return NewFillTiles(area, dungeon.TileFloor)
}

// Room floors an area and optionally walls its perimeter. The area
// provider is resolved once per application, so floor and walls agree on
// the size a randomized provider samples.
type Room struct {
	area   geom.AreaProvider
	walled bool
}

// NewRoom creates a generator producing a floored room, with perimeter
// walls when walled is set.
func NewRoom(area geom.AreaProvider, walled bool) *Room {
	return &Room{area: area, walled: walled}
}

// Apply generates the room on the map at h.
func (g *Room) Apply(r *dungeon.Registry, h dungeon.Handle) {
	a := g.area.ProvideArea()
	NewEmptyRoom(a).Apply(r, h)
	if g.walled {
		NewWalledRoom(a).Apply(r, h)
	}
}

// ApplyPlaced is identical to Apply; room generation is position-independent.
func (g *Room) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) { g.Apply(r, h) }

// WalledRoom draws walls around the perimeter of an area. Tiles whose type
// is listed in keep are left untouched; by default portal tiles are kept so
// that walling a room does not sever its portals.
type WalledRoom struct {
	area geom.AreaProvider
	keep []dungeon.TileType
}

// NewWalledRoom creates a perimeter-wall generator that preserves portal
// tiles. A zero-size area walls the map's whole current bounds.
func NewWalledRoom(area geom.AreaProvider) *WalledRoom {
	return &WalledRoom{area: area, keep: []dungeon.TileType{dungeon.TilePortal}}
}

// NewWalledRoomKeeping creates a perimeter-wall generator with an explicit
// list of tile types to leave untouched.
func NewWalledRoomKeeping(area geom.AreaProvider, keep ...dungeon.TileType) *WalledRoom {
	return &WalledRoom{area: area, keep: keep}
}

// Apply walls the perimeter of the area on the map at h.
func (w *WalledRoom) Apply(r *dungeon.Registry, h dungeon.Handle) {
	r.Write(h, func(m *dungeon.Map) {
		a := resolveArea(w.area, m)
		if a.Size.IsZero() {
			return
		}
		for x := a.Pos.X; x <= a.Right(); x++ {
			w.set(m, geom.Pt(x, a.Pos.Y))
			w.set(m, geom.Pt(x, a.Bottom()))
		}
		for y := a.Pos.Y; y <= a.Bottom(); y++ {
			w.set(m, geom.Pt(a.Pos.X, y))
			w.set(m, geom.Pt(a.Right(), y))
		}
	})
}

// ApplyPlaced is identical to Apply; walling is position-independent.
func (w *WalledRoom) ApplyPlaced(r *dungeon.Registry, h dungeon.Handle) { w.Apply(r, h) }

func (w *WalledRoom) set(m *dungeon.Map, p geom.Point) {
	if slices.Contains(w.keep, m.TileAt(p)) {
		return
	}
	m.SetTile(p, dungeon.TileWall)
}

// resolveArea substitutes the map's current bounds for a zero-size area.
func resolveArea(provide geom.AreaProvider, m *dungeon.Map) geom.Area {
	a := provide.ProvideArea()
	if a.Size.Width > 0 || a.Size.Height > 0 {
		return a
	}
	return m.Area()
}
