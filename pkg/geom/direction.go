package geom

// Direction is one of the eight compass directions, ordered clockwise from
// North. Portal facings use it to describe which way a portal opens.
type Direction int

// Compass directions, clockwise from North.
const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

const directionCount = 8

// Opposite returns the direction rotated a half turn.
func (d Direction) Opposite() Direction {
	return (d + directionCount/2) % directionCount
}

// Rotate returns the direction rotated clockwise by n eighth-turns.
// Negative n rotates counter-clockwise.
func (d Direction) Rotate(n int) Direction {
	r := (int(d) + n) % directionCount
	if r < 0 {
		r += directionCount
	}
	return Direction(r)
}

// IsCardinal reports whether d is one of North, East, South, or West.
func (d Direction) IsCardinal() bool { return d%2 == 0 }

var directionNames = [directionCount]string{
	"north", "northeast", "east", "southeast",
	"south", "southwest", "west", "northwest",
}

// String returns the lowercase compass name, or "unknown" for out-of-range values.
func (d Direction) String() string {
	if d < 0 || d >= directionCount {
		return "unknown"
	}
	return directionNames[d]
}
