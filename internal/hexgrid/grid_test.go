package hexgrid

import (
	"math"
	"testing"
)

func TestNeighborsParity(t *testing.T) {
	g := New(10, 10)
	tests := []struct {
		name string
		at   Coord
		want [6]Coord
	}{
		{"even column", Coord{4, 4}, [6]Coord{{3, 4}, {4, 5}, {5, 4}, {5, 3}, {4, 3}, {3, 3}}},
		{"odd column", Coord{5, 4}, [6]Coord{{4, 5}, {5, 5}, {6, 5}, {6, 4}, {5, 3}, {4, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Neighbors(tt.at)
			for i, n := range got {
				if !n.Present {
					t.Fatalf("slot %d: expected present neighbor", i)
				}
				if n.Coord != tt.want[i] {
					t.Fatalf("slot %d: expected %v, got %v", i, tt.want[i], n.Coord)
				}
			}
		})
	}
}

func TestNeighborsAtEdgeAreAbsent(t *testing.T) {
	g := New(3, 3)
	got := g.Neighbors(Coord{0, 0})
	present := 0
	for _, n := range got {
		if n.Present {
			present++
			if !g.InBounds(n.Coord) {
				t.Fatalf("present neighbor %v is out of bounds", n.Coord)
			}
		}
	}
	// (0,1) and (1,0) only.
	if present != 2 {
		t.Fatalf("expected 2 present neighbors at corner, got %d", present)
	}
}

func TestNeighborsAreAdjacentAndDistinct(t *testing.T) {
	g := New(8, 7)
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			c := Coord{x, y}
			seen := map[Coord]bool{}
			for _, n := range g.Neighbors(c) {
				if !n.Present {
					continue
				}
				if seen[n.Coord] {
					t.Fatalf("%v: duplicate neighbor %v", c, n.Coord)
				}
				seen[n.Coord] = true
				d := Distance(c, n.Coord)
				if math.Abs(d-Diameter*math.Sqrt(3)/2) > 1e-9 {
					t.Fatalf("%v -> %v: expected adjacent distance, got %f", c, n.Coord, d)
				}
			}
		}
	}
}

func TestDistanceSquaredSymmetric(t *testing.T) {
	g := New(6, 6)
	for ax := 0; ax < g.Width; ax++ {
		for ay := 0; ay < g.Height; ay++ {
			for bx := 0; bx < g.Width; bx++ {
				for by := 0; by < g.Height; by++ {
					a, b := Coord{ax, ay}, Coord{bx, by}
					if DistanceSquared(a, b) != DistanceSquared(b, a) {
						t.Fatalf("asymmetric distance between %v and %v", a, b)
					}
				}
			}
		}
	}
}

func TestToCartesianOddColumnShift(t *testing.T) {
	fx, fy, fz := ToCartesian(1, 0, 4)
	if fx != 7.5 {
		t.Fatalf("expected fx=7.5, got %f", fx)
	}
	if math.Abs(fy-Diameter*math.Sqrt(3)/4) > 1e-12 {
		t.Fatalf("expected half-row shift, got %f", fy)
	}
	if fz != 4 {
		t.Fatalf("expected fz=4, got %f", fz)
	}
}

func TestWithinRadius(t *testing.T) {
	g := New(12, 12)
	origin := Coord{5, 5}

	ring := g.WithinRadius(origin, 1.0)
	if len(ring) != 7 {
		t.Fatalf("expected origin plus 6 neighbors, got %d", len(ring))
	}
	if !Contains(ring, origin) {
		t.Fatalf("expected origin in radius set")
	}
	for _, n := range g.Neighbors(origin) {
		if !Contains(ring, n.Coord) {
			t.Fatalf("expected neighbor %v in radius 1", n.Coord)
		}
	}

	far := g.WithinRadius(origin, 3.5)
	limit := 3.5 * Diameter
	for _, c := range far {
		if Distance(origin, c) > limit {
			t.Fatalf("%v is beyond radius", c)
		}
	}
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			c := Coord{x, y}
			if Distance(origin, c) <= limit && !Contains(far, c) {
				t.Fatalf("%v is within radius but missing", c)
			}
		}
	}
}

func TestWithinRadiusClipsAtEdge(t *testing.T) {
	g := New(4, 4)
	got := g.WithinRadius(Coord{0, 0}, 1.0)
	if len(got) != 3 {
		t.Fatalf("expected 3 tiles at corner, got %d", len(got))
	}
}

func TestGridDistanceSquared(t *testing.T) {
	if d := GridDistanceSquared(Coord{1, 2}, Coord{4, 6}); d != 25 {
		t.Fatalf("expected 25, got %d", d)
	}
}
