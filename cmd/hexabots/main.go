// Command hexabots generates, edits and plays hex-grid tactical battles.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/hexabots/internal/config"
	"github.com/talgya/hexabots/internal/persistence"
	"github.com/talgya/hexabots/internal/world"
)

const usage = `usage: hexabots [-config file] <command> [flags]

commands:
  generate  create a new battlefield and store it
  list      list stored battlefields
  show      describe a stored battlefield
  events    print the latest match log of a battlefield
  delete    remove a stored battlefield
  edit      change tiles and rosters of a stored battlefield
  play      run a match
`

// lastWorldKey remembers the most recently used battlefield.
const lastWorldKey = "last_world"

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	setupLogging(cfg.Log)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg, flag.Arg(0), flag.Args()[1:]); err != nil {
		slog.Error("command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

// setupLogging installs a text handler for terminals and JSON otherwise.
func setupLogging(lc config.LogConfig) {
	level, err := lc.SlogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if fd := os.Stderr.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func run(cfg *config.Config, cmd string, args []string) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Debug("database opened", "path", cfg.Storage.DBPath)

	switch cmd {
	case "generate":
		return cmdGenerate(cfg, db, args)
	case "list":
		return cmdList(db)
	case "show":
		return cmdShow(db, args)
	case "events":
		return cmdEvents(db, args)
	case "delete":
		return cmdDelete(db, args)
	case "edit":
		return cmdEdit(db, args)
	case "play":
		return cmdPlay(cfg, db, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// worldName resolves the -name flag, falling back to the last used world.
func worldName(db *persistence.DB, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	last, err := db.GetMeta(lastWorldKey)
	if err != nil || last == "" {
		return "", errors.New("no world named and none used before; pass -name")
	}
	return last, nil
}

func cmdGenerate(cfg *config.Config, db *persistence.DB, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	gc := world.DefaultGenConfig()
	name := fs.String("name", gc.Name, "world name")
	width := fs.Int("width", cfg.Board.Width, "columns")
	height := fs.Int("height", cfg.Board.Height, "rows")
	seed := fs.Int64("seed", cfg.Board.Seed, "generation seed (0 = random)")
	terrain := fs.String("terrain", cfg.Board.Terrain, "flat or noise")
	perTeam := fs.Int("per-team", cfg.Board.CharactersPerTeam, "characters per team")
	fs.Parse(args)

	gc.Name = *name
	gc.Width = *width
	gc.Height = *height
	gc.Seed = *seed
	gc.Terrain = world.TerrainMode(*terrain)
	gc.CharactersPerTeam = *perTeam

	w, err := world.Generate(gc)
	if err != nil {
		return err
	}
	if err := db.SaveWorld(w); err != nil {
		return err
	}
	if err := db.SaveMeta(lastWorldKey, w.Name); err != nil {
		slog.Warn("could not remember world", "error", err)
	}

	fmt.Printf("Generated %q: %s tiles, %d teams, %d characters.\n",
		w.Name, humanize.Comma(int64(w.Map.TileCount())), len(w.Teams), len(w.Characters()))
	return nil
}

func cmdList(db *persistence.DB) error {
	infos, err := db.ListWorlds()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No stored worlds.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%-20s %4dx%-4d %s alive of %s  saved %s\n",
			info.Name, info.Width, info.Height,
			humanize.Comma(int64(info.Alive)), humanize.Comma(int64(info.Characters)),
			humanize.Time(info.SavedAt))
	}
	return nil
}

func cmdShow(db *persistence.DB, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	name := fs.String("name", "", "world name")
	fs.Parse(args)

	n, err := worldName(db, *name)
	if err != nil {
		return err
	}
	w, err := db.LoadWorld(n, persistence.LoadOptions{})
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", w.Name, w.ID)
	fmt.Println(w.Map)
	counts := w.Map.MaterialCounts()
	materials := make([]world.Material, 0, len(counts))
	for m := range counts {
		materials = append(materials, m)
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i] < materials[j] })
	for _, m := range materials {
		fmt.Printf("  %-6s %s\n", m, humanize.Comma(int64(counts[m])))
	}
	for _, t := range w.Teams {
		fmt.Printf("%s: %d of %d alive\n", t.Name, len(t.Living()), len(t.Characters))
		for _, c := range t.Characters {
			fmt.Printf("  %s\n", describe(c))
		}
	}
	return nil
}

func cmdEvents(db *persistence.DB, args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	name := fs.String("name", "", "world name")
	limit := fs.Int("n", 20, "number of events")
	fs.Parse(args)

	n, err := worldName(db, *name)
	if err != nil {
		return err
	}
	w, err := db.LoadWorld(n, persistence.LoadOptions{})
	if err != nil {
		return err
	}
	events, err := db.RecentEvents(w.ID, *limit)
	if err != nil {
		return err
	}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		fmt.Printf("tick %-10s turn %-6d %-8s %s\n", humanize.Comma(int64(e.Tick)), e.Turn, e.Category, e.Description)
	}
	return nil
}

func cmdDelete(db *persistence.DB, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	name := fs.String("name", "", "world name")
	fs.Parse(args)
	if *name == "" {
		return errors.New("delete: -name is required")
	}
	if err := db.DeleteWorld(*name); err != nil {
		return err
	}
	fmt.Printf("Deleted %q.\n", *name)
	return nil
}

func describe(c *world.Character) string {
	state := "alive"
	if !c.Alive {
		state = "dead"
	}
	return fmt.Sprintf("%-6s at %-8s height %-3d CT %.3f efficiency %.2f %s",
		c.Label(), c.Coord, c.Height, c.CT, c.Efficiency, state)
}
