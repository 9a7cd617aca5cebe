// Package world provides the battlefield data model: tiles, teams and characters
// addressed through hexgrid coordinates.
package world

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/talgya/hexabots/internal/hexgrid"
)

// Material is the surface type of a tile.
type Material uint8

const (
	MaterialGrass Material = iota
	MaterialStone
	MaterialWater
)

// MinHeight is the lowest tile height. Heights are always even.
const MinHeight = 2

// String returns the lowercase material name.
func (m Material) String() string {
	switch m {
	case MaterialGrass:
		return "grass"
	case MaterialStone:
		return "stone"
	case MaterialWater:
		return "water"
	default:
		return "unknown"
	}
}

// ParseMaterial maps a material name back to its value.
func ParseMaterial(s string) (Material, error) {
	switch s {
	case "grass":
		return MaterialGrass, nil
	case "stone":
		return MaterialStone, nil
	case "water":
		return MaterialWater, nil
	}
	return 0, fmt.Errorf("unknown material %q", s)
}

// Tile is one cell of the battlefield. Occupants are derived from the
// character rosters, never stored here.
type Tile struct {
	Coord    hexgrid.Coord `json:"coord"`
	Material Material      `json:"material"`
	Height   int           `json:"height"`
}

// NormalizeHeight rounds h to the nearest even integer, not below MinHeight.
func NormalizeHeight(h float64) int {
	even := int(math.Round(h/2.0)) * 2
	return max(MinHeight, even)
}

func clamp[T constraints.Float | constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
