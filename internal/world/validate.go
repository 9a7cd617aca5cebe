package world

import (
	"errors"
	"fmt"

	"github.com/talgya/hexabots/internal/hexgrid"
)

// ErrInvalidWorld is wrapped by every Validate failure.
var ErrInvalidWorld = errors.New("invalid world")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidWorld, fmt.Sprintf(format, args...))
}

// Validate checks the data-model invariants a world must satisfy before a
// match can be played on it.
func (w *World) Validate() error {
	if w.Map == nil {
		return invalid("no map")
	}
	g := w.Map.Grid
	if g.Width <= 0 || g.Height <= 0 {
		return invalid("grid %dx%d", g.Width, g.Height)
	}
	if len(w.Map.Tiles) != g.Width {
		return invalid("expected %d columns, got %d", g.Width, len(w.Map.Tiles))
	}
	for x, col := range w.Map.Tiles {
		if len(col) != g.Height {
			return invalid("column %d: expected %d tiles, got %d", x, g.Height, len(col))
		}
		for y, t := range col {
			want := hexgrid.Coord{X: x, Y: y}
			if t == nil {
				return invalid("missing tile %v", want)
			}
			if t.Coord != want {
				return invalid("tile at %v claims coordinate %v", want, t.Coord)
			}
			if t.Height < MinHeight || t.Height%2 != 0 {
				return invalid("tile %v: height %d", want, t.Height)
			}
			if t.Material > MaterialWater {
				return invalid("tile %v: material %d", want, t.Material)
			}
		}
	}

	if len(w.Teams) < 2 {
		return invalid("expected at least 2 teams, got %d", len(w.Teams))
	}
	teamSeen := make(map[int]bool, len(w.Teams))
	occupied := make(map[hexgrid.Coord]string)
	for _, t := range w.Teams {
		if t == nil {
			return invalid("nil team")
		}
		if teamSeen[t.Index] {
			return invalid("duplicate team index %d", t.Index)
		}
		teamSeen[t.Index] = true

		idSeen := make(map[CharacterID]bool, len(t.Characters))
		for _, c := range t.Characters {
			if c == nil {
				return invalid("team %d: nil character", t.Index)
			}
			if c.Team != t {
				return invalid("character %d on team %d has a dangling team reference", c.ID, t.Index)
			}
			if idSeen[c.ID] {
				return invalid("team %d: duplicate character id %d", t.Index, c.ID)
			}
			idSeen[c.ID] = true
			if c.ID >= t.NextID {
				return invalid("team %d: character id %d not below next id %d", t.Index, c.ID, t.NextID)
			}
			if !g.InBounds(c.Coord) {
				return invalid("character %s at %v is off the map", c.Label(), c.Coord)
			}
			if c.CT < 0 || c.CT > 1 {
				return invalid("character %s: CT %f outside [0,1]", c.Label(), c.CT)
			}
			if c.Efficiency < 0 || c.Efficiency > 1 {
				return invalid("character %s: efficiency %f outside [0,1]", c.Label(), c.Efficiency)
			}
			if c.Alive != (c.Efficiency > 0) {
				return invalid("character %s: alive=%v with efficiency %f", c.Label(), c.Alive, c.Efficiency)
			}
			if !c.Alive {
				continue
			}
			if other, ok := occupied[c.Coord]; ok {
				return invalid("characters %s and %s share tile %v", other, c.Label(), c.Coord)
			}
			occupied[c.Coord] = c.Label()
		}
	}
	return nil
}

// Refresh recomputes derived per-character state from the tile map: cached
// heights and pending actions, which never survive a save.
func (w *World) Refresh() {
	for _, t := range w.Teams {
		for _, c := range t.Characters {
			c.Pending = nil
			if tile := w.Tile(c.Coord); tile != nil {
				c.Height = tile.Height
			}
		}
	}
}
