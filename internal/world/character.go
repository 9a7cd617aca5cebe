package world

import (
	"fmt"

	"github.com/talgya/hexabots/internal/hexgrid"
)

// deathEpsilon absorbs float64 drift when efficiency is debited in fixed steps.
const deathEpsilon = 1e-9

// CharacterID identifies a character within its team.
type CharacterID uint32

// Character is a combatant on the battlefield.
//
// Alive mirrors Efficiency > 0 but is only updated by Sweep, so a character
// reduced to zero efficiency keeps acting as a body until the next sweep.
type Character struct {
	Team   *Team         `json:"-"`
	ID     CharacterID   `json:"id"`
	Coord  hexgrid.Coord `json:"coord"`
	Height int           `json:"height"` // cached from the last occupied tile

	CT         float64 `json:"ct"`         // charge time, 0.0–1.0
	Efficiency float64 `json:"efficiency"` // remaining health, 0.0–1.0
	Alive      bool    `json:"alive"`

	// Pending is the committed but unfinished action, if any. Never persisted.
	Pending Action `json:"-"`
}

// Action is the cost side of something a character has committed to do.
type Action interface {
	PreCost() float64
	PostCost() float64
}

// Label returns a short "team:id" identifier for logs.
func (c *Character) Label() string {
	if c.Team == nil {
		return fmt.Sprintf("?:%d", c.ID)
	}
	return fmt.Sprintf("%d:%d", c.Team.Index, c.ID)
}

// Charge adds rate·efficiency to CT, capped at 1.0.
func (c *Character) Charge(rate float64) {
	c.CT = clamp(c.CT+rate*c.Efficiency, 0, 1)
}

// Debit subtracts cost from CT, never going below zero.
func (c *Character) Debit(cost float64) {
	c.CT = clamp(c.CT-cost, 0, 1)
}

// Damage lowers efficiency by amount. Efficiency bottoms out at exactly zero.
func (c *Character) Damage(amount float64) {
	c.Efficiency = clamp(c.Efficiency-amount, 0, 1)
	if c.Efficiency <= deathEpsilon {
		c.Efficiency = 0
	}
}

// ShouldDie reports whether the character has no efficiency left.
func (c *Character) ShouldDie() bool {
	return c.Efficiency <= 0
}

// MoveTo places the character on t, caching its height.
func (c *Character) MoveTo(t *Tile) {
	c.Coord = t.Coord
	c.Height = t.Height
}

// SetAction commits a, debiting its pre-cost immediately.
func (c *Character) SetAction(a Action) {
	c.Pending = a
	c.Debit(a.PreCost())
}

// FinishAction debits the pending action's post-cost and clears it.
func (c *Character) FinishAction() {
	if c.Pending == nil {
		return
	}
	c.Debit(c.Pending.PostCost())
	c.Pending = nil
}

// AbandonAction clears the pending action without charging its post-cost.
func (c *Character) AbandonAction() {
	c.Pending = nil
}

// Ready reports whether the character has a full charge.
func (c *Character) Ready() bool {
	return c.CT >= 1.0
}
