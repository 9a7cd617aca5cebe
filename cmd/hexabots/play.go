package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexabots/internal/config"
	"github.com/talgya/hexabots/internal/engine"
	"github.com/talgya/hexabots/internal/entropy"
	"github.com/talgya/hexabots/internal/hexgrid"
	"github.com/talgya/hexabots/internal/persistence"
	"github.com/talgya/hexabots/internal/world"
)

func cmdPlay(cfg *config.Config, db *persistence.DB, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	name := fs.String("name", "", "world name")
	auto := fs.Bool("auto", false, "let the policy play every team")
	turns := fs.Uint64("turns", cfg.Match.MaxTurns, "stop after this many turns (0 = until game over)")
	save := fs.Bool("save", false, "store the battlefield as it stands when the match stops")
	fs.Parse(args)

	n, err := worldName(db, *name)
	if err != nil {
		return err
	}
	var opts persistence.LoadOptions
	if cfg.Match.RandomizeCharge {
		seed := entropy.Or(cfg.Match.ChargeSeed)
		slog.Info("randomizing charge", "seed", seed)
		opts.RandomizeCharge = rand.New(rand.NewSource(seed))
	}
	w, err := db.LoadWorld(n, opts)
	if err != nil {
		return err
	}
	if err := db.SaveMeta(lastWorldKey, n); err != nil {
		slog.Warn("could not remember world", "error", err)
	}

	mopts := engine.Options{ChargeRate: cfg.Match.ChargeRate, Logger: slog.Default()}
	if !*auto {
		mopts.HumanTeams = cfg.Match.HumanTeams
	}
	var anim *engine.TimedAnimator
	if cfg.Match.Animate {
		anim = &engine.TimedAnimator{}
		mopts.Animator = anim
	}
	m, err := engine.NewMachine(mopts)
	if err != nil {
		return err
	}
	if err := m.Load(w); err != nil {
		return err
	}

	loop := engine.NewLoop(m)
	loop.Animator = anim
	loop.Speed = cfg.Match.Speed
	loop.MaxTurns = *turns
	if anim == nil {
		loop.Interval = time.Millisecond
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPlayer(os.Stdout)
	var events []engine.Event
	loop.OnIdle = func(s engine.State) {
		for _, e := range m.TakeEvents() {
			p.event(e)
			events = append(events, e)
		}
		if s == engine.StateHumanTurn {
			p.prompt(m)
		}
	}
	go readCommands(ctx, os.Stdin, loop.Commands, p, stop)

	fmt.Printf("Playing %q: %d teams, %d characters.\n", w.Name, len(w.Teams), len(w.Characters()))
	runErr := loop.Run(ctx)
	events = append(events, m.TakeEvents()...)

	if err := db.SaveEvents(w.ID, events); err != nil {
		slog.Error("saving match log failed", "error", err)
	}
	if *save {
		if err := db.SaveWorld(w); err != nil {
			return err
		}
	}
	p.summary(m)
	if runErr != nil && runErr != context.Canceled {
		return runErr
	}
	return nil
}

// readCommands forwards input lines to the loop until input ends.
func readCommands(ctx context.Context, r io.Reader, cmds chan<- func(*engine.Machine), p *player, stop func()) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "quit" {
			stop()
			return
		}
		select {
		case cmds <- func(m *engine.Machine) { p.handle(m, line) }:
		case <-ctx.Done():
			return
		}
	}
}

// player is the terminal input collaborator. It owns the UI state and is
// only touched from the loop goroutine.
type player struct {
	out io.Writer
	ui  engine.UIState
}

func newPlayer(out io.Writer) *player {
	return &player{out: out}
}

// handle applies one command line to the current human turn.
func (p *player) handle(m *engine.Machine, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	if m.State() != engine.StateHumanTurn {
		fmt.Fprintln(p.out, "not your turn")
		return
	}
	m.Present(&p.ui)

	switch fields[0] {
	case "show":
		p.prompt(m)
	case "wait", "pass":
		m.Pass(&p.ui)
	case "move":
		c, err := parseCoord(fields[1:])
		if err != nil {
			fmt.Fprintln(p.out, "usage: move X Y")
			return
		}
		m.Select(&p.ui, engine.SelectTile(c))
		if !m.Confirm(&p.ui) {
			fmt.Fprintf(p.out, "cannot move to %s\n", c)
		}
	case "attack":
		target, err := findCharacter(m.World(), fields[1:])
		if err != nil {
			fmt.Fprintf(p.out, "attack: %v\n", err)
			return
		}
		m.Select(&p.ui, engine.SelectCharacter(target))
		if !m.Confirm(&p.ui) {
			fmt.Fprintf(p.out, "cannot attack %s\n", target.Label())
		}
	default:
		fmt.Fprintln(p.out, "commands: move X Y | attack TEAM ID | wait | show | quit")
	}
}

func (p *player) prompt(m *engine.Machine) {
	m.Present(&p.ui)
	if p.ui.Actor == nil {
		return
	}
	fmt.Fprintf(p.out, "\n%s to act: %s\n", p.ui.Actor.Team.Name, describe(p.ui.Actor))
	if len(p.ui.Attacks) > 0 {
		fmt.Fprint(p.out, "  attack:")
		for _, c := range p.ui.Attacks {
			fmt.Fprintf(p.out, " %d %d", c.Team.Index, c.ID)
			fmt.Fprintf(p.out, " (%s, %.0f%%)", c.Coord, c.Efficiency*100)
		}
		fmt.Fprintln(p.out)
	}
	fmt.Fprintf(p.out, "  %d tiles in reach\n> ", len(p.ui.Moves))
}

func (p *player) event(e engine.Event) {
	if e.Category == engine.CategoryTurn {
		return
	}
	fmt.Fprintf(p.out, "[%s] %s\n", humanize.Comma(int64(e.Tick)), e.Description)
}

func (p *player) summary(m *engine.Machine) {
	switch {
	case m.Winner() != nil:
		fmt.Fprintf(p.out, "%s wins after %s turns (%s ticks).\n",
			m.Winner().Name, humanize.Comma(int64(m.Turns())), humanize.Comma(int64(m.Clock())))
	case m.Draw():
		fmt.Fprintf(p.out, "Draw after %s turns.\n", humanize.Comma(int64(m.Turns())))
	default:
		fmt.Fprintf(p.out, "Stopped after %s turns.\n", humanize.Comma(int64(m.Turns())))
	}
}

func parseCoord(args []string) (hexgrid.Coord, error) {
	if len(args) != 2 {
		return hexgrid.Coord{}, fmt.Errorf("expected X Y")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return hexgrid.Coord{}, err
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return hexgrid.Coord{}, err
	}
	return hexgrid.Coord{X: x, Y: y}, nil
}

// findCharacter resolves "TEAM ID" to a roster member.
func findCharacter(w *world.World, args []string) (*world.Character, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expected TEAM ID")
	}
	team, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return nil, err
	}
	t := w.Team(team)
	if t == nil {
		return nil, fmt.Errorf("%w: %d", world.ErrNoTeam, team)
	}
	c := t.Character(world.CharacterID(id))
	if c == nil {
		return nil, fmt.Errorf("%w: %d:%d", world.ErrNoCharacter, team, id)
	}
	return c, nil
}
