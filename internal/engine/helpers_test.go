package engine

import (
	"math"
	"testing"

	"github.com/talgya/hexabots/internal/hexgrid"
	"github.com/talgya/hexabots/internal/world"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

// duel builds a width×height flat world with one character per team.
func duel(t *testing.T, width, height int, a, b hexgrid.Coord) (*world.World, *world.Character, *world.Character) {
	t.Helper()
	w := world.NewEmpty("duel", width, height)
	ca, err := w.AddCharacter(0, a)
	if err != nil {
		t.Fatalf("add a: %v", err)
	}
	cb, err := w.AddCharacter(1, b)
	if err != nil {
		t.Fatalf("add b: %v", err)
	}
	return w, ca, cb
}

// heldAnimator keeps every completion callback until the test releases it.
type heldAnimator struct {
	effects []Effect
	dones   []func()
}

func (h *heldAnimator) Animate(e Effect, done func()) {
	h.effects = append(h.effects, e)
	h.dones = append(h.dones, done)
}

func (h *heldAnimator) release(i int) {
	h.dones[i]()
}

func newMachine(t *testing.T, opts Options) *Machine {
	t.Helper()
	m, err := NewMachine(opts)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	return m
}

// checkBounds fails if any character's CT or efficiency left [0,1].
func checkBounds(t *testing.T, w *world.World) {
	t.Helper()
	for _, c := range w.Characters() {
		if c.CT < 0 || c.CT > 1 {
			t.Fatalf("%s: CT %f outside [0,1]", c.Label(), c.CT)
		}
		if c.Efficiency < 0 || c.Efficiency > 1 {
			t.Fatalf("%s: efficiency %f outside [0,1]", c.Label(), c.Efficiency)
		}
	}
}
