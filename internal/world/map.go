package world

import (
	"fmt"

	"github.com/talgya/hexabots/internal/hexgrid"
)

// Map holds the tile grid, indexed column-major as Tiles[x][y].
type Map struct {
	Grid  hexgrid.Grid `json:"grid"`
	Tiles [][]*Tile    `json:"-"`
}

// NewMap creates a map of the given size filled with default tiles.
func NewMap(width, height int) *Map {
	m := &Map{
		Grid:  hexgrid.New(width, height),
		Tiles: make([][]*Tile, width),
	}
	for x := 0; x < width; x++ {
		m.Tiles[x] = make([]*Tile, height)
		for y := 0; y < height; y++ {
			m.Tiles[x][y] = &Tile{
				Coord:    hexgrid.Coord{X: x, Y: y},
				Material: MaterialGrass,
				Height:   MinHeight,
			}
		}
	}
	return m
}

// Get returns the tile at the given coordinate, or nil if out of bounds.
func (m *Map) Get(c hexgrid.Coord) *Tile {
	if !m.Grid.InBounds(c) {
		return nil
	}
	return m.Tiles[c.X][c.Y]
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return m.Grid.Size()
}

// Each calls fn for every tile in column-major order.
func (m *Map) Each(fn func(t *Tile)) {
	for _, col := range m.Tiles {
		for _, t := range col {
			fn(t)
		}
	}
}

// MaterialCounts returns how many tiles use each material.
func (m *Map) MaterialCounts() map[Material]int {
	counts := make(map[Material]int)
	m.Each(func(t *Tile) { counts[t.Material]++ })
	return counts
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, tiles=%d)", m.Grid.Width, m.Grid.Height, m.TileCount())
}
