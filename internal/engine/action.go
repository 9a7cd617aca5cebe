package engine

import (
	"fmt"

	"github.com/talgya/hexabots/internal/hexgrid"
	"github.com/talgya/hexabots/internal/world"
)

// Fixed combat rules.
const (
	MoveRadius   = 3.5 // hexes a character may travel in one move
	AttackRadius = 1.0 // hexes an attacker can reach
	MoveSpeed    = 3.5 // hexes travelled per full charge
	AttackCost   = 0.2 // charge debited on selecting an attack, and again on completion
	AttackDamage = 0.2
	WaitCost     = 0.2
)

// ActionKind tags the variant held by an Action.
type ActionKind uint8

const (
	ActionMove ActionKind = iota + 1
	ActionAttack
	ActionWait
)

// String returns the lowercase action name.
func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionWait:
		return "wait"
	default:
		return "unknown"
	}
}

// Action is something a character has chosen to do on its turn. Only the
// fields of its Kind are meaningful: From and Destination for a move, Target
// for an attack.
type Action struct {
	Kind        ActionKind
	Actor       *world.Character
	From        hexgrid.Coord
	Destination hexgrid.Coord
	Target      *world.Character
}

// NewMove creates a move of actor from its current tile to dest.
func NewMove(actor *world.Character, dest hexgrid.Coord) *Action {
	return &Action{Kind: ActionMove, Actor: actor, From: actor.Coord, Destination: dest}
}

// NewAttack creates an attack of actor on target.
func NewAttack(actor, target *world.Character) *Action {
	return &Action{Kind: ActionAttack, Actor: actor, From: actor.Coord, Target: target}
}

// NewWait creates a pass for an actor with nothing better to do.
func NewWait(actor *world.Character) *Action {
	return &Action{Kind: ActionWait, Actor: actor, From: actor.Coord}
}

// PreCost is the charge debited the moment the action is chosen.
func (a *Action) PreCost() float64 {
	switch a.Kind {
	case ActionMove:
		return 0
	case ActionAttack:
		return AttackCost
	case ActionWait:
		return 0
	default:
		panic(fmt.Sprintf("engine: unknown action kind %d", a.Kind))
	}
}

// PostCost is the charge debited when the action completes. A move costs
// in proportion to the distance covered.
func (a *Action) PostCost() float64 {
	switch a.Kind {
	case ActionMove:
		return hexgrid.Distance(a.From, a.Destination) / hexgrid.Diameter / MoveSpeed
	case ActionAttack:
		return AttackCost
	case ActionWait:
		return WaitCost
	default:
		panic(fmt.Sprintf("engine: unknown action kind %d", a.Kind))
	}
}

// blocked reports whether the action can no longer start on w. Only a move
// can be blocked, by a living character standing on its destination.
func (a *Action) blocked(w *world.World) bool {
	switch a.Kind {
	case ActionMove:
		return w.Occupied(a.Destination)
	case ActionAttack, ActionWait:
		return false
	default:
		panic(fmt.Sprintf("engine: unknown action kind %d", a.Kind))
	}
}

// apply carries out the action's effect on w. Attack range is not checked
// again here: a target that moved away since selection is still hit.
func (a *Action) apply(w *world.World) {
	switch a.Kind {
	case ActionMove:
		if tile := w.Tile(a.Destination); tile != nil {
			a.Actor.MoveTo(tile)
		}
	case ActionAttack:
		a.Target.Damage(AttackDamage)
	case ActionWait:
	default:
		panic(fmt.Sprintf("engine: unknown action kind %d", a.Kind))
	}
}

// effect describes the action for an Animator.
func (a *Action) effect(w *world.World) Effect {
	e := Effect{Kind: a.Kind, Actor: a.Actor, From: a.From, To: a.From}
	switch a.Kind {
	case ActionMove:
		e.To = a.Destination
	case ActionAttack:
		e.To = a.Target.Coord
		e.Target = a.Target
	case ActionWait:
	default:
		panic(fmt.Sprintf("engine: unknown action kind %d", a.Kind))
	}
	if tile := w.Tile(e.To); tile != nil {
		e.ToHeight = tile.Height
	}
	return e
}

// String describes the action for logs and events.
func (a *Action) String() string {
	switch a.Kind {
	case ActionMove:
		return fmt.Sprintf("%s moves %v -> %v", a.Actor.Label(), a.From, a.Destination)
	case ActionAttack:
		return fmt.Sprintf("%s attacks %s", a.Actor.Label(), a.Target.Label())
	case ActionWait:
		return fmt.Sprintf("%s waits", a.Actor.Label())
	default:
		return fmt.Sprintf("%s does unknown action %d", a.Actor.Label(), a.Kind)
	}
}
