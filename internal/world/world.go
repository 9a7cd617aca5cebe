package world

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/hexabots/internal/hexgrid"
)

var (
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	ErrOccupied    = errors.New("tile is occupied")
	ErrNoTeam      = errors.New("no such team")
	ErrNoCharacter = errors.New("no such character")
)

// DefaultTeams are the two sides every generated world starts with.
var DefaultTeams = []struct {
	Name  string
	Color Color
}{
	{"Team 1", Color{0.1, 0.1, 0.1, 1.0}},
	{"Team 2", Color{0.9, 0.9, 0.9, 1.0}},
}

// World is a complete battlefield: the tile map and the teams fighting on it.
type World struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Map   *Map      `json:"map"`
	Teams []*Team   `json:"teams"`
}

// NewEmpty creates a world of flat grass with the default teams and no characters.
func NewEmpty(name string, width, height int) *World {
	w := &World{
		ID:   uuid.New(),
		Name: name,
		Map:  NewMap(width, height),
	}
	for i, dt := range DefaultTeams {
		w.Teams = append(w.Teams, NewTeam(i, dt.Name, dt.Color))
	}
	return w
}

// Grid returns the world's hex grid.
func (w *World) Grid() hexgrid.Grid {
	return w.Map.Grid
}

// Tile returns the tile at c, or nil if out of bounds.
func (w *World) Tile(c hexgrid.Coord) *Tile {
	return w.Map.Get(c)
}

// Team returns the team with the given index, or nil.
func (w *World) Team(index int) *Team {
	for _, t := range w.Teams {
		if t.Index == index {
			return t
		}
	}
	return nil
}

// Inhabitants returns the living characters standing on c, in team then
// roster order.
func (w *World) Inhabitants(c hexgrid.Coord) []*Character {
	var out []*Character
	for _, t := range w.Teams {
		for _, ch := range t.Characters {
			if ch.Alive && ch.Coord == c {
				out = append(out, ch)
			}
		}
	}
	return out
}

// Occupied reports whether any living character stands on c.
func (w *World) Occupied(c hexgrid.Coord) bool {
	for _, t := range w.Teams {
		for _, ch := range t.Characters {
			if ch.Alive && ch.Coord == c {
				return true
			}
		}
	}
	return false
}

// Characters returns every roster member, living or not, in team then roster order.
func (w *World) Characters() []*Character {
	var out []*Character
	for _, t := range w.Teams {
		out = append(out, t.Characters...)
	}
	return out
}

// TeamsAlive returns the teams that still have a living character.
func (w *World) TeamsAlive() []*Team {
	var out []*Team
	for _, t := range w.Teams {
		if t.HasLiving() {
			out = append(out, t)
		}
	}
	return out
}

// Sweep marks every living character with no efficiency left as dead and
// returns the characters that died.
func (w *World) Sweep() []*Character {
	var died []*Character
	for _, t := range w.Teams {
		for _, ch := range t.Characters {
			if ch.Alive && ch.ShouldDie() {
				ch.Alive = false
				died = append(died, ch)
			}
		}
	}
	return died
}

// AddCharacter places a new character for the given team on c.
func (w *World) AddCharacter(team int, c hexgrid.Coord) (*Character, error) {
	t := w.Team(team)
	if t == nil {
		return nil, fmt.Errorf("add character: %w: %d", ErrNoTeam, team)
	}
	tile := w.Tile(c)
	if tile == nil {
		return nil, fmt.Errorf("add character at %v: %w", c, ErrOutOfBounds)
	}
	if w.Occupied(c) {
		return nil, fmt.Errorf("add character at %v: %w", c, ErrOccupied)
	}
	return t.add(tile), nil
}

// RemoveCharacter deletes a character from its team's roster.
func (w *World) RemoveCharacter(team int, id CharacterID) error {
	t := w.Team(team)
	if t == nil {
		return fmt.Errorf("remove character: %w: %d", ErrNoTeam, team)
	}
	return t.remove(id)
}

// MoveCharacter relocates ch onto c outside of normal play. The target must
// be on the map and free of other living characters.
func (w *World) MoveCharacter(ch *Character, c hexgrid.Coord) error {
	tile := w.Tile(c)
	if tile == nil {
		return fmt.Errorf("move %s to %v: %w", ch.Label(), c, ErrOutOfBounds)
	}
	for _, other := range w.Inhabitants(c) {
		if other != ch {
			return fmt.Errorf("move %s to %v: %w", ch.Label(), c, ErrOccupied)
		}
	}
	ch.MoveTo(tile)
	return nil
}

// SetHeight changes the height of the tile at c, normalized to an even value
// of at least MinHeight. Characters standing there follow the new height.
func (w *World) SetHeight(c hexgrid.Coord, h float64) error {
	tile := w.Tile(c)
	if tile == nil {
		return fmt.Errorf("set height at %v: %w", c, ErrOutOfBounds)
	}
	tile.Height = NormalizeHeight(h)
	for _, ch := range w.Inhabitants(c) {
		ch.MoveTo(tile)
	}
	return nil
}

// SetMaterial changes the material of the tile at c.
func (w *World) SetMaterial(c hexgrid.Coord, m Material) error {
	tile := w.Tile(c)
	if tile == nil {
		return fmt.Errorf("set material at %v: %w", c, ErrOutOfBounds)
	}
	tile.Material = m
	return nil
}
