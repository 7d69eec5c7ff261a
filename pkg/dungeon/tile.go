package dungeon

// TileType is the content of a single map cell. Cells that were never
// written read as TileVoid.
type TileType int

// Tile types, in render-precedence order.
const (
	TileVoid TileType = iota
	TileFloor
	TileWall
	TilePortal
)

var tileNames = [...]string{"void", "floor", "wall", "portal"}

// String returns the lowercase tile name, or "unknown" for out-of-range values.
func (t TileType) String() string {
	if t < 0 || int(t) >= len(tileNames) {
		return "unknown"
	}
	return tileNames[t]
}

// Rune returns the conventional single-character representation used by
// the ASCII renderer: ' ', '.', '#', and '+'.
func (t TileType) Rune() rune {
	switch t {
	case TileFloor:
		return '.'
	case TileWall:
		return '#'
	case TilePortal:
		return '+'
	default:
		return ' '
	}
}
