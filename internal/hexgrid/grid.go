// Package hexgrid provides the offset hex coordinate system used by the battlefield:
// neighbor enumeration, projection onto the board plane, and radius queries.
// Columns with odd x are shifted half a hex along y.
package hexgrid

import (
	"fmt"
	"math"
)

// Diameter is the width of one hex on the board plane, in board units.
const Diameter = 10.0

var sqrt3 = math.Sqrt(3)

// Coord is a tile position in the offset layout.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// evenOffsets and oddOffsets are the six neighbor offsets for even and odd columns.
var (
	evenOffsets = [6]Coord{
		{X: -1, Y: 0},
		{X: 0, Y: 1},
		{X: 1, Y: 0},
		{X: 1, Y: -1},
		{X: 0, Y: -1},
		{X: -1, Y: -1},
	}
	oddOffsets = [6]Coord{
		{X: -1, Y: 1},
		{X: 0, Y: 1},
		{X: 1, Y: 1},
		{X: 1, Y: 0},
		{X: 0, Y: -1},
		{X: -1, Y: 0},
	}
)

// Neighbor is one slot of a neighbor query. Present is false when the
// adjacent position falls outside the grid.
type Neighbor struct {
	Coord   Coord
	Present bool
}

// Grid is a bounded Width × Height board. Coordinates never wrap.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// New returns a grid of the given size.
func New(width, height int) Grid {
	return Grid{Width: width, Height: height}
}

// Size returns the number of tiles on the grid.
func (g Grid) Size() int {
	return g.Width * g.Height
}

// InBounds reports whether c lies on the grid.
func (g Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// Neighbors returns the six adjacent positions of c in fixed order.
// Slots outside the grid are marked absent.
func (g Grid) Neighbors(c Coord) [6]Neighbor {
	offsets := &evenOffsets
	if c.X%2 != 0 {
		offsets = &oddOffsets
	}
	var result [6]Neighbor
	for i, off := range offsets {
		n := Coord{X: c.X + off.X, Y: c.Y + off.Y}
		result[i] = Neighbor{Coord: n, Present: g.InBounds(n)}
	}
	return result
}

// ToCartesian projects a tile position and height onto board space.
func ToCartesian(x, y, z int) (fx, fy, fz float64) {
	fx = 0.75 * Diameter * float64(x)
	fy = Diameter*sqrt3/2*float64(y) + float64(x&1)*0.5*Diameter*sqrt3/2
	fz = float64(z)
	return fx, fy, fz
}

// DistanceSquared returns the squared board-plane distance between two tiles.
func DistanceSquared(a, b Coord) float64 {
	ax, ay, _ := ToCartesian(a.X, a.Y, 0)
	bx, by, _ := ToCartesian(b.X, b.Y, 0)
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}

// Distance returns the board-plane distance between two tiles.
func Distance(a, b Coord) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// GridDistanceSquared is the squared distance between raw coordinates,
// ignoring the hex projection entirely.
func GridDistanceSquared(a, b Coord) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// WithinRadius returns every grid position whose board distance from origin
// is at most radius hexes, origin included. The scan runs column by column,
// so the result order is stable for a given grid.
func (g Grid) WithinRadius(origin Coord, radius float64) []Coord {
	limit := (radius * Diameter) * (radius * Diameter)
	var out []Coord
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			c := Coord{X: x, Y: y}
			if DistanceSquared(origin, c) <= limit {
				out = append(out, c)
			}
		}
	}
	return out
}

// Contains reports whether c appears in coords.
func Contains(coords []Coord, c Coord) bool {
	for _, k := range coords {
		if k == c {
			return true
		}
	}
	return false
}
