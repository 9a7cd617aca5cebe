package engine

import (
	"github.com/talgya/hexabots/internal/hexgrid"
	"github.com/talgya/hexabots/internal/world"
)

// Effect describes a visible action for whoever renders it.
type Effect struct {
	Kind     ActionKind
	Actor    *world.Character
	Target   *world.Character // attacks only
	From     hexgrid.Coord
	To       hexgrid.Coord
	ToHeight int
}

// Duration is how long the effect plays, in seconds.
func (e Effect) Duration() float64 {
	switch e.Kind {
	case ActionMove:
		return 0.5
	case ActionAttack:
		return 0.2 // lunge out and back
	default:
		return 0
	}
}

// Animator plays action effects. It must call done exactly once when the
// effect has finished; the machine stays suspended until then.
type Animator interface {
	Animate(e Effect, done func())
}

// InstantAnimator finishes every effect immediately. Used headless.
type InstantAnimator struct{}

// Animate calls done right away.
func (InstantAnimator) Animate(_ Effect, done func()) {
	done()
}

// TimedAnimator finishes effects after their Duration of fed time.
type TimedAnimator struct {
	playing []playing
}

type playing struct {
	effect    Effect
	remaining float64
	done      func()
}

// Animate queues the effect.
func (a *TimedAnimator) Animate(e Effect, done func()) {
	a.playing = append(a.playing, playing{effect: e, remaining: e.Duration(), done: done})
}

// Advance moves every playing effect forward by dt seconds and fires the
// callbacks of those that finished, in the order they started.
func (a *TimedAnimator) Advance(dt float64) {
	var finished []func()
	kept := a.playing[:0]
	for _, p := range a.playing {
		p.remaining -= dt
		if p.remaining <= 0 {
			finished = append(finished, p.done)
			continue
		}
		kept = append(kept, p)
	}
	a.playing = kept
	for _, done := range finished {
		done()
	}
}

// Busy reports whether any effect is still playing.
func (a *TimedAnimator) Busy() bool {
	return len(a.playing) > 0
}
