package engine

import (
	"github.com/talgya/hexabots/internal/hexgrid"
	"github.com/talgya/hexabots/internal/world"
)

// Selection is what the player pointed at: a character, or else a tile.
type Selection struct {
	Character *world.Character
	Coord     hexgrid.Coord
	Set       bool
}

// SelectTile returns a selection of the tile at c.
func SelectTile(c hexgrid.Coord) Selection {
	return Selection{Coord: c, Set: true}
}

// SelectCharacter returns a selection of ch.
func SelectCharacter(ch *world.Character) Selection {
	return Selection{Character: ch, Coord: ch.Coord, Set: true}
}

// UIState is the input collaborator's view of a human turn. It is owned by
// the collaborator and handed to the machine by pointer; the machine keeps
// no hover or selection state of its own.
type UIState struct {
	Hovered  Selection
	Selected Selection

	Actor   *world.Character
	Moves   []hexgrid.Coord
	Attacks []*world.Character
}

// Present copies the current turn's actor and candidates into ui. Outside
// a human turn it clears them.
func (m *Machine) Present(ui *UIState) {
	if m.state != StateHumanTurn {
		ui.Actor = nil
		ui.Moves = nil
		ui.Attacks = nil
		return
	}
	ui.Actor = m.actor
	ui.Moves = append(ui.Moves[:0], m.cand.Moves...)
	ui.Attacks = append(ui.Attacks[:0], m.cand.Attacks...)
}

// Select records sel as the player's current choice.
func (m *Machine) Select(ui *UIState, sel Selection) {
	ui.Selected = sel
}

// Confirm commits the selected target as the actor's action: a move for a
// tile, an attack for a character. Anything that is not a current candidate
// is ignored and false is returned with the machine unchanged.
func (m *Machine) Confirm(ui *UIState) bool {
	if m.state != StateHumanTurn || !ui.Selected.Set {
		return false
	}
	sel := ui.Selected
	var a *Action
	if sel.Character != nil {
		target := sel.Character
		if !target.Alive || target.Team == m.actor.Team || !m.cand.CanAttack(target) {
			return false
		}
		a = NewAttack(m.actor, target)
	} else {
		if !m.cand.CanMoveTo(sel.Coord) || m.world.Occupied(sel.Coord) {
			return false
		}
		a = NewMove(m.actor, sel.Coord)
	}
	ui.Selected = Selection{}
	m.commit(a)
	m.Present(ui)
	return true
}

// Pass spends the human actor's turn waiting.
func (m *Machine) Pass(ui *UIState) bool {
	if m.state != StateHumanTurn {
		return false
	}
	ui.Selected = Selection{}
	m.commit(NewWait(m.actor))
	m.Present(ui)
	return true
}
