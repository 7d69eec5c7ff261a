// Package geom provides the 2D integer geometry used throughout dungen:
// points, sizes, rectangular areas, cardinal/ordinal directions, and the
// provider interfaces that let generators sample counts, positions, sizes,
// and areas from fixed values or seeded random ranges.
//
// All coordinates are tile coordinates. Areas are inclusive of their right
// and bottom edges: an Area at (0, 0) with size 8×6 covers x in [0, 7] and
// y in [0, 5].
package geom

// Point is a 2D tile coordinate.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns the vector sum p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector difference p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width/height extent in tiles.
type Size struct {
	Width, Height int
}

// Sz is shorthand for Size{w, h}.
func Sz(w, h int) Size { return Size{Width: w, Height: h} }

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// Area is a rectangle anchored at Pos, extending Size tiles right and down.
type Area struct {
	Pos  Point
	Size Size
}

// AreaOf returns an area covering s anchored at the origin.
func AreaOf(s Size) Area { return Area{Size: s} }

// Right returns the x coordinate of the rightmost column inside the area.
func (a Area) Right() int { return a.Pos.X + a.Size.Width - 1 }

// Bottom returns the y coordinate of the bottommost row inside the area.
func (a Area) Bottom() int { return a.Pos.Y + a.Size.Height - 1 }

// Contains reports whether p lies inside the area, edges included.
func (a Area) Contains(p Point) bool {
	return p.X >= a.Pos.X && p.X <= a.Right() && p.Y >= a.Pos.Y && p.Y <= a.Bottom()
}

// Translate returns the area shifted by the vector p.
func (a Area) Translate(p Point) Area {
	return Area{Pos: a.Pos.Add(p), Size: a.Size}
}
