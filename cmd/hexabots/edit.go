package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/talgya/hexabots/internal/hexgrid"
	"github.com/talgya/hexabots/internal/persistence"
	"github.com/talgya/hexabots/internal/world"
)

const editUsage = `usage: hexabots edit [-name N] <op> args
ops:
  add TEAM X Y           place a new character
  remove TEAM ID         delete a character
  move TEAM ID X Y       relocate a character
  height X Y H           set tile height (rounded to even, at least 2)
  material X Y M         set tile material (grass, stone, water)
`

func cmdEdit(db *persistence.DB, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
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
	msg, err := applyEdit(w, fs.Args())
	if err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return fmt.Errorf("edit left %q inconsistent: %w", n, err)
	}
	if err := db.SaveWorld(w); err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

// applyEdit performs one editor operation on w and describes it.
func applyEdit(w *world.World, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%s", editUsage)
	}
	op, rest := args[0], args[1:]

	switch op {
	case "add":
		v, err := ints(rest, 3)
		if err != nil {
			return "", fmt.Errorf("add TEAM X Y: %w", err)
		}
		c, err := w.AddCharacter(v[0], coord(v[1], v[2]))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("added %s at %s", c.Label(), c.Coord), nil

	case "remove":
		v, err := ints(rest, 2)
		if err != nil {
			return "", fmt.Errorf("remove TEAM ID: %w", err)
		}
		if err := w.RemoveCharacter(v[0], world.CharacterID(v[1])); err != nil {
			return "", err
		}
		return fmt.Sprintf("removed %d:%d", v[0], v[1]), nil

	case "move":
		c, err := findCharacter(w, rest[:min(2, len(rest))])
		if err != nil {
			return "", fmt.Errorf("move TEAM ID X Y: %w", err)
		}
		v, err := ints(rest[2:], 2)
		if err != nil {
			return "", fmt.Errorf("move TEAM ID X Y: %w", err)
		}
		if err := w.MoveCharacter(c, coord(v[0], v[1])); err != nil {
			return "", err
		}
		return fmt.Sprintf("moved %s to %s", c.Label(), c.Coord), nil

	case "height":
		if len(rest) != 3 {
			return "", fmt.Errorf("height X Y H: expected 3 arguments")
		}
		v, err := ints(rest[:2], 2)
		if err != nil {
			return "", fmt.Errorf("height X Y H: %w", err)
		}
		h, err := strconv.ParseFloat(rest[2], 64)
		if err != nil {
			return "", fmt.Errorf("height X Y H: %w", err)
		}
		at := coord(v[0], v[1])
		if err := w.SetHeight(at, h); err != nil {
			return "", err
		}
		return fmt.Sprintf("tile %s height %d", at, w.Tile(at).Height), nil

	case "material":
		if len(rest) != 3 {
			return "", fmt.Errorf("material X Y M: expected 3 arguments")
		}
		v, err := ints(rest[:2], 2)
		if err != nil {
			return "", fmt.Errorf("material X Y M: %w", err)
		}
		m, err := world.ParseMaterial(rest[2])
		if err != nil {
			return "", err
		}
		at := coord(v[0], v[1])
		if err := w.SetMaterial(at, m); err != nil {
			return "", err
		}
		return fmt.Sprintf("tile %s is %s", at, m), nil

	default:
		return "", fmt.Errorf("unknown edit op %q\n%s", op, editUsage)
	}
}

func ints(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func coord(x, y int) hexgrid.Coord {
	return hexgrid.Coord{X: x, Y: y}
}
