package world

import "fmt"

// Color is an RGBA color with components in 0.0–1.0.
type Color [4]float64

// Team is one side of the battle. Roster order is significant: it breaks
// scheduling ties between characters that become ready on the same tick.
type Team struct {
	Index      int          `json:"index"`
	Name       string       `json:"name"`
	Color      Color        `json:"color"`
	Characters []*Character `json:"characters"`

	// NextID is the identifier handed to the next added character.
	// It only ever grows, so IDs are never reused.
	NextID CharacterID `json:"next_id"`
}

// NewTeam creates an empty team.
func NewTeam(index int, name string, color Color) *Team {
	return &Team{Index: index, Name: name, Color: color, NextID: 1}
}

// Character returns the roster member with the given ID, or nil.
func (t *Team) Character(id CharacterID) *Character {
	for _, c := range t.Characters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Living returns the roster members that are still alive, in roster order.
func (t *Team) Living() []*Character {
	var out []*Character
	for _, c := range t.Characters {
		if c.Alive {
			out = append(out, c)
		}
	}
	return out
}

// HasLiving reports whether at least one roster member is alive.
// A team with an empty roster has no living members.
func (t *Team) HasLiving() bool {
	for _, c := range t.Characters {
		if c.Alive {
			return true
		}
	}
	return false
}

// add appends a fresh full-health character on tile.
func (t *Team) add(tile *Tile) *Character {
	c := &Character{
		Team:       t,
		ID:         t.NextID,
		Efficiency: 1.0,
		Alive:      true,
	}
	c.MoveTo(tile)
	t.NextID++
	t.Characters = append(t.Characters, c)
	return c
}

// remove deletes the character with the given ID, preserving roster order.
func (t *Team) remove(id CharacterID) error {
	for i, c := range t.Characters {
		if c.ID == id {
			t.Characters = append(t.Characters[:i], t.Characters[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("team %d: %w: %d", t.Index, ErrNoCharacter, id)
}
