package engine

import (
	"testing"

	"github.com/talgya/hexabots/internal/hexgrid"
)

func TestActionCosts(t *testing.T) {
	w, a, b := duel(t, 8, 8, hexgrid.Coord{X: 0, Y: 0}, hexgrid.Coord{X: 1, Y: 0})

	move := NewMove(a, hexgrid.Coord{X: 4, Y: 0})
	if move.PreCost() != 0 {
		t.Fatalf("expected free move selection, got %f", move.PreCost())
	}
	// 4 columns at 0.75·D = 30 units; 30 / 10 / 3.5.
	if !near(move.PostCost(), 30.0/10.0/3.5) {
		t.Fatalf("expected move post cost %f, got %f", 30.0/10.0/3.5, move.PostCost())
	}

	attack := NewAttack(a, b)
	if attack.PreCost() != 0.2 || attack.PostCost() != 0.2 {
		t.Fatalf("expected attack costs 0.2/0.2, got %f/%f", attack.PreCost(), attack.PostCost())
	}

	wait := NewWait(a)
	if wait.PreCost() != 0 || wait.PostCost() != WaitCost {
		t.Fatalf("unexpected wait costs %f/%f", wait.PreCost(), wait.PostCost())
	}

	if move.blocked(w) {
		t.Fatalf("free destination reported blocked")
	}
	if !NewMove(a, b.Coord).blocked(w) {
		t.Fatalf("occupied destination not reported blocked")
	}
}

func TestMoveCostCapturesOrigin(t *testing.T) {
	w, a, _ := duel(t, 8, 8, hexgrid.Coord{X: 0, Y: 0}, hexgrid.Coord{X: 7, Y: 7})
	move := NewMove(a, hexgrid.Coord{X: 0, Y: 3})
	before := move.PostCost()
	move.apply(w)
	if a.Coord != (hexgrid.Coord{X: 0, Y: 3}) {
		t.Fatalf("expected mover at destination, got %v", a.Coord)
	}
	if move.PostCost() != before {
		t.Fatalf("post cost changed after the move: %f vs %f", move.PostCost(), before)
	}
	if !near(before, hexgrid.Distance(hexgrid.Coord{}, hexgrid.Coord{X: 0, Y: 3})/hexgrid.Diameter/MoveSpeed) {
		t.Fatalf("unexpected post cost %f", before)
	}
}

func TestMoveUpdatesCachedHeight(t *testing.T) {
	w, a, _ := duel(t, 8, 8, hexgrid.Coord{X: 0, Y: 0}, hexgrid.Coord{X: 7, Y: 7})
	dest := hexgrid.Coord{X: 2, Y: 1}
	if err := w.SetHeight(dest, 10); err != nil {
		t.Fatalf("set height: %v", err)
	}
	NewMove(a, dest).apply(w)
	if a.Height != 10 {
		t.Fatalf("expected cached height 10, got %d", a.Height)
	}
}

func TestAttackAppliesFixedDamage(t *testing.T) {
	w, a, b := duel(t, 8, 8, hexgrid.Coord{X: 0, Y: 0}, hexgrid.Coord{X: 1, Y: 0})
	NewAttack(a, b).apply(w)
	if !near(b.Efficiency, 0.8) {
		t.Fatalf("expected efficiency 0.8, got %f", b.Efficiency)
	}
	if !b.Alive {
		t.Fatalf("damage must not kill before the sweep")
	}
}
