// Package engine provides the turn-scheduling and combat-resolution core:
// charge scheduling, actions, the turn state machine and the loop that drives it.
package engine

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is the real-time length of one loop frame.
const DefaultInterval = 16 * time.Millisecond

// Loop drives a Machine forward frame by frame. Every frame it feeds
// elapsed time to a TimedAnimator (if any), applies queued commands, and
// steps the machine until it has to wait.
type Loop struct {
	Machine  *Machine
	Animator *TimedAnimator // optional; nil when effects finish instantly
	Interval time.Duration  // frame length (default DefaultInterval)
	Speed    float64        // multiplier: 1.0 = real-time, 0 = paused
	MaxTurns uint64         // stop after this many turns; 0 = no limit
	Frame    uint64         // frames run so far (monotonic)

	// Commands carries work from other goroutines, such as an input reader,
	// into the loop so the machine is only ever touched here.
	Commands chan func(*Machine)

	// OnIdle is called once each time the machine starts waiting in a state.
	OnIdle func(s State)

	idle bool
}

// NewLoop creates a loop for m at real-time speed.
func NewLoop(m *Machine) *Loop {
	return &Loop{
		Machine:  m,
		Interval: DefaultInterval,
		Speed:    1.0,
		Commands: make(chan func(*Machine), 16),
	}
}

// Run processes frames until the game is over, the turn limit is reached,
// or ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	slog.Info("loop started", "state", l.Machine.State(), "speed", l.Speed)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			slog.Info("loop stopped", "frame", l.Frame, "reason", ctx.Err())
			return ctx.Err()
		case cmd := <-l.Commands:
			cmd(l.Machine)
			l.idle = false
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds() * l.Speed
			last = now
			if l.Speed <= 0 {
				continue
			}
			l.Frame++
			if l.Animator != nil {
				l.Animator.Advance(dt)
			}
		}
		l.Drain()
		if l.Done() {
			slog.Info("loop finished", "frame", l.Frame, "turns", l.Machine.Turns(), "state", l.Machine.State())
			return nil
		}
	}
}

// Drain steps the machine until it waits or the turn limit is reached, and
// returns the number of steps taken.
func (l *Loop) Drain() int {
	steps := 0
	for !l.limitReached() && l.Machine.Step() {
		steps++
	}
	if steps > 0 {
		l.idle = false
	}
	if !l.idle {
		l.idle = true
		if l.OnIdle != nil {
			l.OnIdle(l.Machine.State())
		}
	}
	return steps
}

// Done reports whether the loop has nothing more to do.
func (l *Loop) Done() bool {
	return l.Machine.State() == StateGameOver || l.limitReached()
}

func (l *Loop) limitReached() bool {
	return l.MaxTurns > 0 && l.Machine.Turns() >= l.MaxTurns && l.Machine.State() == StateCharging
}
