package persistence

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/talgya/hexabots/internal/engine"
	"github.com/talgya/hexabots/internal/hexgrid"
	"github.com/talgya/hexabots/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "hexabots.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleWorld(t *testing.T) *world.World {
	t.Helper()
	cfg := world.SmallTestConfig()
	cfg.Name = "sample"
	cfg.Terrain = world.TerrainNoise
	cfg.CharactersPerTeam = 3
	w, err := world.Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	w.Teams[0].Characters[1].CT = 0.25
	w.Teams[1].Characters[2].Efficiency = 0.4
	return w
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	w := sampleWorld(t)
	dead := w.Teams[1].Characters[0]
	dead.Damage(1)
	w.Sweep()

	if err := db.SaveWorld(w); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.LoadWorld("sample", LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.ID != w.ID || got.Name != w.Name {
		t.Fatalf("expected %s/%s, got %s/%s", w.ID, w.Name, got.ID, got.Name)
	}
	if got.Grid() != w.Grid() {
		t.Fatalf("expected grid %+v, got %+v", w.Grid(), got.Grid())
	}
	w.Map.Each(func(want *world.Tile) {
		tile := got.Tile(want.Coord)
		if *tile != *want {
			t.Fatalf("tile %v: expected %+v, got %+v", want.Coord, *want, *tile)
		}
	})

	if len(got.Teams) != len(w.Teams) {
		t.Fatalf("expected %d teams, got %d", len(w.Teams), len(got.Teams))
	}
	for i, want := range w.Teams {
		team := got.Teams[i]
		if team.Index != want.Index || team.Name != want.Name || team.Color != want.Color || team.NextID != want.NextID {
			t.Fatalf("team %d: expected %+v, got %+v", i, want, team)
		}
		if len(team.Characters) != len(want.Characters) {
			t.Fatalf("team %d: expected %d characters, got %d", i, len(want.Characters), len(team.Characters))
		}
		for j, wc := range want.Characters {
			c := team.Characters[j]
			if c.Team != team {
				t.Fatalf("%s: team reference not resolved", c.Label())
			}
			if c.ID != wc.ID || c.Coord != wc.Coord || c.CT != wc.CT ||
				c.Efficiency != wc.Efficiency || c.Alive != wc.Alive || c.Height != wc.Height {
				t.Fatalf("roster slot %d of team %d: expected %+v, got %+v", j, i, *wc, *c)
			}
		}
	}
	if got.Teams[1].Characters[0].Alive {
		t.Fatalf("dead character came back to life")
	}
}

func TestSaveReplacesByName(t *testing.T) {
	db := openTestDB(t)
	w := sampleWorld(t)
	if err := db.SaveWorld(w); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := w.AddCharacter(0, hexgrid.Coord{X: 6, Y: 6}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := db.SaveWorld(w); err != nil {
		t.Fatalf("second save: %v", err)
	}

	infos, err := db.ListWorlds()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 stored world, got %d", len(infos))
	}
	if infos[0].Characters != 7 || infos[0].Alive != 7 {
		t.Fatalf("expected 7 characters, got %d (%d alive)", infos[0].Characters, infos[0].Alive)
	}

	got, err := db.LoadWorld("sample", LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := len(got.Teams[0].Characters); n != 4 {
		t.Fatalf("expected 4 characters on team 1, got %d", n)
	}
}

func TestSaveReplaceDropsOtherWorldsEvents(t *testing.T) {
	db := openTestDB(t)
	first := sampleWorld(t)
	if err := db.SaveWorld(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	log := []engine.Event{{Tick: 1, Turn: 1, Category: engine.CategoryAction, Description: "opening"}}
	if err := db.SaveEvents(first.ID, log); err != nil {
		t.Fatalf("save events: %v", err)
	}

	// Resaving the same world keeps its match log.
	if err := db.SaveWorld(first); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if events, err := db.RecentEvents(first.ID, 10); err != nil || len(events) != 1 {
		t.Fatalf("expected 1 event after resave, got %d (%v)", len(events), err)
	}

	second := sampleWorld(t)
	if second.ID == first.ID {
		t.Fatalf("expected a fresh world ID")
	}
	if err := db.SaveWorld(second); err != nil {
		t.Fatalf("save replacement: %v", err)
	}
	events, err := db.RecentEvents(first.ID, 10)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected the replaced world's log to be gone, got %d events", len(events))
	}
}

func TestSaveSweepsKillMadeOnLastTurn(t *testing.T) {
	db := openTestDB(t)
	w := world.NewEmpty("kill", 4, 4)
	a, err := w.AddCharacter(0, hexgrid.Coord{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("add a: %v", err)
	}
	b, err := w.AddCharacter(1, hexgrid.Coord{X: 1, Y: 0})
	if err != nil {
		t.Fatalf("add b: %v", err)
	}
	a.CT = 1
	b.Efficiency = 0.2

	m, err := engine.NewMachine(engine.Options{})
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	if err := m.Load(w); err != nil {
		t.Fatalf("load machine: %v", err)
	}
	l := engine.NewLoop(m)
	l.MaxTurns = 1
	l.Drain()

	if b.Efficiency != 0 {
		t.Fatalf("expected the attack to finish b, got efficiency %f", b.Efficiency)
	}
	if !b.Alive {
		t.Fatalf("expected b to be unswept when the turn limit stops the loop")
	}

	if err := db.SaveWorld(w); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.LoadWorld("kill", LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Teams[1].Characters[0].Alive {
		t.Fatalf("expected b to be stored dead")
	}
}

func TestLoadRejectsMissingTiles(t *testing.T) {
	for _, tc := range []struct {
		name  string
		query string
	}{
		{"all", "DELETE FROM tiles WHERE world_id = ?"},
		{"one", "DELETE FROM tiles WHERE world_id = ? AND x = 0 AND y = 0"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db := openTestDB(t)
			w := sampleWorld(t)
			if err := db.SaveWorld(w); err != nil {
				t.Fatalf("save: %v", err)
			}
			if _, err := db.conn.Exec(tc.query, w.ID.String()); err != nil {
				t.Fatalf("corrupt: %v", err)
			}
			if _, err := db.LoadWorld("sample", LoadOptions{}); !errors.Is(err, world.ErrInvalidWorld) {
				t.Fatalf("expected ErrInvalidWorld, got %v", err)
			}
		})
	}
}

func TestLoadMissingWorld(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadWorld("nowhere", LoadOptions{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.DeleteWorld("nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadRejectsDanglingTeam(t *testing.T) {
	db := openTestDB(t)
	w := sampleWorld(t)
	if err := db.SaveWorld(w); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := db.conn.Exec("UPDATE characters SET team_idx = 9 WHERE world_id = ? AND slot = 0 AND team_idx = 1",
		w.ID.String()); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := db.LoadWorld("sample", LoadOptions{}); !errors.Is(err, world.ErrInvalidWorld) {
		t.Fatalf("expected ErrInvalidWorld, got %v", err)
	}
}

func TestLoadRejectsInvalidState(t *testing.T) {
	db := openTestDB(t)
	w := sampleWorld(t)
	if err := db.SaveWorld(w); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := db.conn.Exec("UPDATE characters SET ct = 3.5 WHERE world_id = ?", w.ID.String()); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := db.LoadWorld("sample", LoadOptions{}); !errors.Is(err, world.ErrInvalidWorld) {
		t.Fatalf("expected ErrInvalidWorld, got %v", err)
	}
}

func TestLoadRandomizesChargeReproducibly(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveWorld(sampleWorld(t)); err != nil {
		t.Fatalf("save: %v", err)
	}

	load := func() []float64 {
		w, err := db.LoadWorld("sample", LoadOptions{RandomizeCharge: rand.New(rand.NewSource(7))})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		var cts []float64
		for _, c := range w.Characters() {
			if c.CT < 0 || c.CT >= 1 {
				t.Fatalf("%s: CT %f outside [0,1)", c.Label(), c.CT)
			}
			cts = append(cts, c.CT)
		}
		return cts
	}

	first, second := load(), load()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("character %d: %f vs %f with the same seed", i, first[i], second[i])
		}
	}
}

func TestDeleteWorldRemovesEverything(t *testing.T) {
	db := openTestDB(t)
	w := sampleWorld(t)
	if err := db.SaveWorld(w); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SaveEvents(w.ID, []engine.Event{{Tick: 1, Turn: 1, Category: engine.CategoryTurn, Description: "x"}}); err != nil {
		t.Fatalf("save events: %v", err)
	}
	if err := db.DeleteWorld("sample"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	infos, err := db.ListWorlds()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("expected no worlds, got %d", len(infos))
	}
	events, err := db.RecentEvents(w.ID, 10)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected the match log to be deleted, got %d events", len(events))
	}
	var tiles int
	if err := db.conn.Get(&tiles, "SELECT COUNT(*) FROM tiles"); err != nil {
		t.Fatalf("count tiles: %v", err)
	}
	if tiles != 0 {
		t.Fatalf("expected no tiles left, got %d", tiles)
	}
}

func TestEventsNewestFirstPerWorld(t *testing.T) {
	db := openTestDB(t)
	a, b := uuid.New(), uuid.New()

	var events []engine.Event
	for i := uint64(1); i <= 5; i++ {
		events = append(events, engine.Event{Tick: i * 100, Turn: i, Category: engine.CategoryAction, Description: "step"})
	}
	if err := db.SaveEvents(a, events); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := db.SaveEvents(b, events[:2]); err != nil {
		t.Fatalf("save b: %v", err)
	}
	if err := db.SaveEvents(a, nil); err != nil {
		t.Fatalf("empty save: %v", err)
	}

	got, err := db.RecentEvents(a, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0] != events[4] || got[2] != events[2] {
		t.Fatalf("expected newest first, got %+v", got)
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("last_world", "alpha"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := db.SaveMeta("last_world", "beta"); err != nil {
		t.Fatalf("overwrite meta: %v", err)
	}
	v, err := db.GetMeta("last_world")
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if v != "beta" {
		t.Fatalf("expected beta, got %q", v)
	}
}
