// Package persistence provides SQLite-based storage for battlefields and
// their match logs.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexabots/internal/engine"
	"github.com/talgya/hexabots/internal/hexgrid"
	"github.com/talgya/hexabots/internal/world"
)

// ErrNotFound is returned when no world is stored under the requested name.
var ErrNotFound = errors.New("world not found")

// DB wraps a SQLite connection for world persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS worlds (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		world_id TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		material TEXT NOT NULL,
		height INTEGER NOT NULL,
		PRIMARY KEY (world_id, x, y)
	);

	CREATE TABLE IF NOT EXISTS teams (
		world_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		name TEXT NOT NULL,
		color_r REAL NOT NULL,
		color_g REAL NOT NULL,
		color_b REAL NOT NULL,
		color_a REAL NOT NULL,
		next_id INTEGER NOT NULL,
		PRIMARY KEY (world_id, idx)
	);

	CREATE TABLE IF NOT EXISTS characters (
		world_id TEXT NOT NULL,
		team_idx INTEGER NOT NULL,
		slot INTEGER NOT NULL,
		id INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		ct REAL NOT NULL,
		efficiency REAL NOT NULL,
		alive INTEGER NOT NULL,
		PRIMARY KEY (world_id, team_idx, id)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		world_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_world ON events(world_id, id);
	CREATE INDEX IF NOT EXISTS idx_characters_roster ON characters(world_id, team_idx, slot);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Stored rows. They mirror the live world types but carry no pointers and
// no transient state such as pending actions.
type worldRecord struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Width   int    `db:"width"`
	Height  int    `db:"height"`
	SavedAt int64  `db:"saved_at"`
}

type tileRecord struct {
	WorldID  string `db:"world_id"`
	X        int    `db:"x"`
	Y        int    `db:"y"`
	Material string `db:"material"`
	Height   int    `db:"height"`
}

type teamRecord struct {
	WorldID string  `db:"world_id"`
	Index   int     `db:"idx"`
	Name    string  `db:"name"`
	R       float64 `db:"color_r"`
	G       float64 `db:"color_g"`
	B       float64 `db:"color_b"`
	A       float64 `db:"color_a"`
	NextID  uint32  `db:"next_id"`
}

type characterRecord struct {
	WorldID    string  `db:"world_id"`
	TeamIndex  int     `db:"team_idx"`
	Slot       int     `db:"slot"`
	ID         uint32  `db:"id"`
	X          int     `db:"x"`
	Y          int     `db:"y"`
	CT         float64 `db:"ct"`
	Efficiency float64 `db:"efficiency"`
	Alive      int     `db:"alive"`
}

type eventRecord struct {
	WorldID     string `db:"world_id"`
	Tick        uint64 `db:"tick"`
	Turn        uint64 `db:"turn"`
	Description string `db:"description"`
	Category    string `db:"category"`
}

// WorldInfo summarizes a stored world.
type WorldInfo struct {
	ID         uuid.UUID
	Name       string
	Width      int
	Height     int
	Characters int
	Alive      int
	SavedAt    time.Time
}

// SaveWorld writes w under its name, replacing any world previously stored
// under the same name. Characters with no efficiency left are swept first,
// so a world saved between turns loads back.
func (db *DB) SaveWorld(w *world.World) error {
	for _, c := range w.Sweep() {
		slog.Debug("swept before save", "character", c.Label())
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var oldID string
	err = tx.Get(&oldID, "SELECT id FROM worlds WHERE name = ?", w.Name)
	switch {
	case err == nil:
		if err := deleteWorldRows(tx, oldID); err != nil {
			return fmt.Errorf("replace %q: %w", w.Name, err)
		}
		// A different world held this name; its match log goes with it.
		if oldID != w.ID.String() {
			if _, err := tx.Exec("DELETE FROM events WHERE world_id = ?", oldID); err != nil {
				return fmt.Errorf("replace %q events: %w", w.Name, err)
			}
		}
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}
	// The same world may also have been stored under another name.
	if err := deleteWorldRows(tx, w.ID.String()); err != nil {
		return fmt.Errorf("replace %s: %w", w.ID, err)
	}

	id := w.ID.String()
	g := w.Grid()
	_, err = tx.NamedExec(`INSERT INTO worlds (id, name, width, height, saved_at)
		VALUES (:id, :name, :width, :height, :saved_at)`,
		worldRecord{ID: id, Name: w.Name, Width: g.Width, Height: g.Height, SavedAt: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("insert world %q: %w", w.Name, err)
	}

	tileStmt, err := tx.PrepareNamed(`INSERT INTO tiles (world_id, x, y, material, height)
		VALUES (:world_id, :x, :y, :material, :height)`)
	if err != nil {
		return err
	}
	defer tileStmt.Close()

	var tileErr error
	w.Map.Each(func(t *world.Tile) {
		if tileErr != nil {
			return
		}
		_, tileErr = tileStmt.Exec(tileRecord{
			WorldID:  id,
			X:        t.Coord.X,
			Y:        t.Coord.Y,
			Material: t.Material.String(),
			Height:   t.Height,
		})
	})
	if tileErr != nil {
		return fmt.Errorf("insert tiles: %w", tileErr)
	}

	for _, t := range w.Teams {
		_, err := tx.NamedExec(`INSERT INTO teams
			(world_id, idx, name, color_r, color_g, color_b, color_a, next_id)
			VALUES (:world_id, :idx, :name, :color_r, :color_g, :color_b, :color_a, :next_id)`,
			teamRecord{
				WorldID: id, Index: t.Index, Name: t.Name,
				R: t.Color[0], G: t.Color[1], B: t.Color[2], A: t.Color[3],
				NextID: uint32(t.NextID),
			})
		if err != nil {
			return fmt.Errorf("insert team %d: %w", t.Index, err)
		}

		for slot, c := range t.Characters {
			alive := 0
			if c.Alive {
				alive = 1
			}
			_, err := tx.NamedExec(`INSERT INTO characters
				(world_id, team_idx, slot, id, x, y, ct, efficiency, alive)
				VALUES (:world_id, :team_idx, :slot, :id, :x, :y, :ct, :efficiency, :alive)`,
				characterRecord{
					WorldID: id, TeamIndex: t.Index, Slot: slot, ID: uint32(c.ID),
					X: c.Coord.X, Y: c.Coord.Y,
					CT: c.CT, Efficiency: c.Efficiency, Alive: alive,
				})
			if err != nil {
				return fmt.Errorf("insert character %s: %w", c.Label(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world saved", "name", w.Name, "id", id, "tiles", w.Map.TileCount(), "characters", len(w.Characters()))
	return nil
}

func deleteWorldRows(tx *sqlx.Tx, id string) error {
	for _, table := range []string{"characters", "teams", "tiles"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE world_id = ?", id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	_, err := tx.Exec("DELETE FROM worlds WHERE id = ?", id)
	return err
}

// LoadOptions adjust a world as it is loaded.
type LoadOptions struct {
	// RandomizeCharge, when set, gives every character a fresh charge drawn
	// from it, so a reloaded battle does not replay the same opening.
	RandomizeCharge *rand.Rand
}

// LoadWorld reads the world stored under name. The result is validated;
// a stored world that does not form a consistent battlefield is an error.
func (db *DB) LoadWorld(name string, opts LoadOptions) (*world.World, error) {
	var wr worldRecord
	err := db.conn.Get(&wr, "SELECT id, name, width, height, saved_at FROM worlds WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}

	id, err := uuid.Parse(wr.ID)
	if err != nil {
		return nil, fmt.Errorf("load %q: bad id: %w", name, err)
	}
	if wr.Width <= 0 || wr.Height <= 0 {
		return nil, fmt.Errorf("load %q: %w: grid %dx%d", name, world.ErrInvalidWorld, wr.Width, wr.Height)
	}
	w := &world.World{ID: id, Name: wr.Name, Map: world.NewMap(wr.Width, wr.Height)}

	var tiles []tileRecord
	if err := db.conn.Select(&tiles,
		"SELECT world_id, x, y, material, height FROM tiles WHERE world_id = ?", wr.ID); err != nil {
		return nil, fmt.Errorf("load tiles: %w", err)
	}
	if len(tiles) != wr.Width*wr.Height {
		return nil, fmt.Errorf("load %q: %w: %d of %d tiles stored",
			name, world.ErrInvalidWorld, len(tiles), wr.Width*wr.Height)
	}
	for _, tr := range tiles {
		tile := w.Map.Get(hexgrid.Coord{X: tr.X, Y: tr.Y})
		if tile == nil {
			return nil, fmt.Errorf("load %q: %w: tile (%d,%d) off the map", name, world.ErrInvalidWorld, tr.X, tr.Y)
		}
		m, err := world.ParseMaterial(tr.Material)
		if err != nil {
			return nil, fmt.Errorf("load %q: tile (%d,%d): %w", name, tr.X, tr.Y, err)
		}
		tile.Material = m
		tile.Height = tr.Height
	}

	var teams []teamRecord
	if err := db.conn.Select(&teams, `SELECT world_id, idx, name, color_r, color_g, color_b, color_a, next_id
		FROM teams WHERE world_id = ? ORDER BY idx`, wr.ID); err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	byIndex := make(map[int]*world.Team, len(teams))
	for _, tr := range teams {
		t := world.NewTeam(tr.Index, tr.Name, world.Color{tr.R, tr.G, tr.B, tr.A})
		t.NextID = world.CharacterID(tr.NextID)
		w.Teams = append(w.Teams, t)
		byIndex[tr.Index] = t
	}

	var chars []characterRecord
	if err := db.conn.Select(&chars, `SELECT world_id, team_idx, slot, id, x, y, ct, efficiency, alive
		FROM characters WHERE world_id = ? ORDER BY team_idx, slot`, wr.ID); err != nil {
		return nil, fmt.Errorf("load characters: %w", err)
	}
	for _, cr := range chars {
		t, ok := byIndex[cr.TeamIndex]
		if !ok {
			return nil, fmt.Errorf("load %q: %w: character %d refers to missing team %d",
				name, world.ErrInvalidWorld, cr.ID, cr.TeamIndex)
		}
		t.Characters = append(t.Characters, &world.Character{
			Team:       t,
			ID:         world.CharacterID(cr.ID),
			Coord:      hexgrid.Coord{X: cr.X, Y: cr.Y},
			CT:         cr.CT,
			Efficiency: cr.Efficiency,
			Alive:      cr.Alive != 0,
		})
	}

	w.Refresh()
	if rng := opts.RandomizeCharge; rng != nil {
		for _, c := range w.Characters() {
			c.CT = rng.Float64()
		}
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}

	slog.Debug("world loaded", "name", w.Name, "teams", len(w.Teams), "characters", len(chars))
	return w, nil
}

// ListWorlds returns a summary of every stored world, most recently saved first.
func (db *DB) ListWorlds() ([]WorldInfo, error) {
	var rows []struct {
		worldRecord
		Characters int `db:"characters"`
		Alive      int `db:"alive"`
	}
	err := db.conn.Select(&rows, `SELECT w.id, w.name, w.width, w.height, w.saved_at,
		COUNT(c.id) AS characters, COALESCE(SUM(c.alive), 0) AS alive
		FROM worlds w LEFT JOIN characters c ON c.world_id = w.id
		GROUP BY w.id ORDER BY w.saved_at DESC, w.name`)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}

	out := make([]WorldInfo, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("list worlds: %q: %w", r.Name, err)
		}
		out = append(out, WorldInfo{
			ID:         id,
			Name:       r.Name,
			Width:      r.Width,
			Height:     r.Height,
			Characters: r.Characters,
			Alive:      r.Alive,
			SavedAt:    time.Unix(r.SavedAt, 0),
		})
	}
	return out, nil
}

// DeleteWorld removes the world stored under name along with its match log.
func (db *DB) DeleteWorld(name string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id string
	if err := tx.Get(&id, "SELECT id FROM worlds WHERE name = ?", name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("delete %q: %w", name, ErrNotFound)
		}
		return err
	}
	if err := deleteWorldRows(tx, id); err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if _, err := tx.Exec("DELETE FROM events WHERE world_id = ?", id); err != nil {
		return fmt.Errorf("delete %q events: %w", name, err)
	}
	return tx.Commit()
}

// SaveEvents appends events to the match log of the given world.
func (db *DB) SaveEvents(worldID uuid.UUID, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.NamedExec(`INSERT INTO events (world_id, tick, turn, description, category)
			VALUES (:world_id, :tick, :turn, :description, :category)`,
			eventRecord{
				WorldID:     worldID.String(),
				Tick:        e.Tick,
				Turn:        e.Turn,
				Description: e.Description,
				Category:    e.Category,
			})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events of a world, newest first.
func (db *DB) RecentEvents(worldID uuid.UUID, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, turn, description, category FROM events WHERE world_id = ? ORDER BY id DESC LIMIT ?",
		worldID.String(), limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in the database metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
