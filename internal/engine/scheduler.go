package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/hexabots/internal/world"
)

// DefaultChargeRate is the charge added per tick to a full-efficiency character.
const DefaultChargeRate = 0.001

// ErrChargeRate is returned for a scheduler that could never make progress.
var ErrChargeRate = errors.New("charge rate must be positive")

// Scheduler decides who acts next by accumulating charge one tick at a time.
//
// Every tick adds Rate·Efficiency to each living character in team order,
// then roster order. After each full pass the first character in that same
// order with a full charge acts. Ties go to order, never to the larger CT.
type Scheduler struct {
	Rate  float64
	Clock uint64 // ticks elapsed this match
}

// NewScheduler returns a scheduler with the given per-tick charge rate.
func NewScheduler(rate float64) (*Scheduler, error) {
	if !(rate > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrChargeRate, rate)
	}
	return &Scheduler{Rate: rate}, nil
}

// Reset rewinds the clock for a new match.
func (s *Scheduler) Reset() {
	s.Clock = 0
}

// Next advances time until some character is ready and returns it with its
// team. ok is false when fewer than two teams still have a living character,
// or when no living character can ever charge.
func (s *Scheduler) Next(teams []*world.Team) (actor *world.Character, team *world.Team, ok bool) {
	if !s.canProgress(teams) {
		return nil, nil, false
	}
	for {
		s.Clock++
		for _, t := range teams {
			for _, c := range t.Characters {
				if c.Alive {
					c.Charge(s.Rate)
				}
			}
		}
		for _, t := range teams {
			for _, c := range t.Characters {
				if c.Alive && c.Ready() {
					return c, t, true
				}
			}
		}
	}
}

func (s *Scheduler) canProgress(teams []*world.Team) bool {
	alive := 0
	charging := false
	for _, t := range teams {
		if !t.HasLiving() {
			continue
		}
		alive++
		for _, c := range t.Characters {
			if c.Alive && (c.Efficiency > 0 || c.Ready()) {
				charging = true
			}
		}
	}
	return alive >= 2 && charging
}
