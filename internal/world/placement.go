package world

import (
	"fmt"
	"sort"

	"github.com/talgya/hexabots/internal/hexgrid"
)

// minSpacing is the smallest board distance, in hexes, between two
// teammates placed at generation time.
const minSpacing = 1.5

// HomeCorner returns the corner a team starts from. The first two teams face
// each other across the diagonal; further teams take the remaining corners.
func HomeCorner(g hexgrid.Grid, team int) hexgrid.Coord {
	corners := [4]hexgrid.Coord{
		{X: 0, Y: 0},
		{X: g.Width - 1, Y: g.Height - 1},
		{X: g.Width - 1, Y: 0},
		{X: 0, Y: g.Height - 1},
	}
	return corners[team%len(corners)]
}

// PlaceRosters adds perTeam characters to every team, nearest to its home
// corner first, skipping water and keeping teammates apart.
func PlaceRosters(w *World, perTeam int) error {
	for _, t := range w.Teams {
		home := HomeCorner(w.Grid(), t.Index)
		candidates := placementCandidates(w, home)

		var placed []hexgrid.Coord
		for _, c := range candidates {
			if len(placed) >= perTeam {
				break
			}
			if w.Occupied(c) || tooClose(c, placed) {
				continue
			}
			if _, err := w.AddCharacter(t.Index, c); err != nil {
				return err
			}
			placed = append(placed, c)
		}
		if len(placed) < perTeam {
			return fmt.Errorf("team %d: placed %d of %d characters", t.Index, len(placed), perTeam)
		}
	}
	return nil
}

// placementCandidates lists land tiles sorted by distance from home. The
// sort is stable so equal distances keep map scan order.
func placementCandidates(w *World, home hexgrid.Coord) []hexgrid.Coord {
	var out []hexgrid.Coord
	w.Map.Each(func(t *Tile) {
		if t.Material != MaterialWater {
			out = append(out, t.Coord)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return hexgrid.DistanceSquared(home, out[i]) < hexgrid.DistanceSquared(home, out[j])
	})
	return out
}

func tooClose(c hexgrid.Coord, existing []hexgrid.Coord) bool {
	limit := minSpacing * hexgrid.Diameter
	for _, e := range existing {
		if hexgrid.Distance(c, e) < limit {
			return true
		}
	}
	return false
}
