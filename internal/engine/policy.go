package engine

import (
	"github.com/talgya/hexabots/internal/hexgrid"
	"github.com/talgya/hexabots/internal/world"
)

// Candidates are the legal targets for the actor whose turn it is.
type Candidates struct {
	Moves   []hexgrid.Coord    // free tiles within MoveRadius
	Attacks []*world.Character // living opponents within AttackRadius
}

// FindCandidates computes the move and attack candidates of actor on w.
func FindCandidates(w *world.World, actor *world.Character) Candidates {
	g := w.Grid()
	var cand Candidates
	for _, c := range g.WithinRadius(actor.Coord, MoveRadius) {
		if !w.Occupied(c) {
			cand.Moves = append(cand.Moves, c)
		}
	}
	for _, c := range g.WithinRadius(actor.Coord, AttackRadius) {
		for _, other := range w.Inhabitants(c) {
			if other.Team != actor.Team {
				cand.Attacks = append(cand.Attacks, other)
			}
		}
	}
	return cand
}

// CanMoveTo reports whether c is one of the move candidates.
func (cand Candidates) CanMoveTo(c hexgrid.Coord) bool {
	return hexgrid.Contains(cand.Moves, c)
}

// CanAttack reports whether target is one of the attack candidates.
func (cand Candidates) CanAttack(target *world.Character) bool {
	for _, t := range cand.Attacks {
		if t == target {
			return true
		}
	}
	return false
}

// NearestOpponent returns the living character of another team closest to
// actor by raw coordinate distance. The first found wins ties.
func NearestOpponent(w *world.World, actor *world.Character) *world.Character {
	var best *world.Character
	bestDist := 0
	for _, t := range w.Teams {
		if t == actor.Team {
			continue
		}
		for _, c := range t.Characters {
			if !c.Alive {
				continue
			}
			d := hexgrid.GridDistanceSquared(c.Coord, actor.Coord)
			if best == nil || d < bestDist {
				best = c
				bestDist = d
			}
		}
	}
	return best
}

// AutoDecide is the policy for teams without a human player: attack the
// nearest opponent when in reach, otherwise step toward it. An actor with
// neither option waits.
func AutoDecide(w *world.World, actor *world.Character, cand Candidates) *Action {
	opponent := NearestOpponent(w, actor)
	if opponent == nil {
		return NewWait(actor)
	}
	if cand.CanAttack(opponent) {
		return NewAttack(actor, opponent)
	}

	var best *hexgrid.Coord
	bestDist := 0
	for i, c := range cand.Moves {
		if w.Occupied(c) {
			continue
		}
		d := hexgrid.GridDistanceSquared(c, opponent.Coord)
		// Zero would be the opponent's own tile.
		if d <= 0 {
			continue
		}
		if best == nil || d < bestDist {
			best = &cand.Moves[i]
			bestDist = d
		}
	}
	if best == nil {
		return NewWait(actor)
	}
	return NewMove(actor, *best)
}
