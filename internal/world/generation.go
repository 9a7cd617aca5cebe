package world

import (
	"fmt"
	"log/slog"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexabots/internal/entropy"
	"github.com/talgya/hexabots/internal/hexgrid"
)

// TerrainMode selects how tiles are filled. The flat mode reproduces the
// classic empty board; the noise mode layers simplex noise into heights and
// materials.
type TerrainMode string

const (
	TerrainFlat  TerrainMode = "flat"
	TerrainNoise TerrainMode = "noise"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Name              string
	Width             int
	Height            int
	Seed              int64 // 0 = random
	Terrain           TerrainMode
	WaterLevel        float64 // noise elevation below which tiles become water
	StoneLevel        float64 // noise elevation above which tiles become stone
	MaxHeight         int     // tallest tile in noise mode
	CharactersPerTeam int
}

// DefaultGenConfig returns the classic 160×160 flat board with one
// character per team.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Name:              "level",
		Width:             160,
		Height:            160,
		Terrain:           TerrainFlat,
		WaterLevel:        0.30,
		StoneLevel:        0.70,
		MaxHeight:         16,
		CharactersPerTeam: 1,
	}
}

// SmallTestConfig returns a tiny board for rapid iteration.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Width = 12
	cfg.Height = 12
	cfg.Seed = 42
	return cfg
}

// Generate creates a complete world: tiles according to the terrain mode,
// the default teams, and their starting rosters placed at opposite corners.
func Generate(cfg GenConfig) (*World, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("generate: grid %dx%d", cfg.Width, cfg.Height)
	}
	seed := entropy.Or(cfg.Seed)
	slog.Debug("generating world", "name", cfg.Name, "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "seed", seed)

	w := NewEmpty(cfg.Name, cfg.Width, cfg.Height)

	switch cfg.Terrain {
	case TerrainFlat, "":
	case TerrainNoise:
		shapeTerrain(w.Map, cfg, seed)
	default:
		return nil, fmt.Errorf("generate: unknown terrain mode %q", cfg.Terrain)
	}

	per := cfg.CharactersPerTeam
	if per <= 0 {
		per = 1
	}
	if err := PlaceRosters(w, per); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return w, nil
}

// shapeTerrain assigns heights and materials from two noise layers.
func shapeTerrain(m *Map, cfg GenConfig, seed int64) {
	elevNoise := opensimplex.NewNormalized(seed)
	rockNoise := opensimplex.NewNormalized(seed + 1)

	maxH := cfg.MaxHeight
	if maxH < MinHeight {
		maxH = MinHeight
	}

	m.Each(func(t *Tile) {
		// Sample in hex units so features keep their size across diameters.
		fx, fy, _ := hexgrid.ToCartesian(t.Coord.X, t.Coord.Y, 0)
		x := fx / hexgrid.Diameter
		y := fy / hexgrid.Diameter

		elev := octaveNoise(elevNoise, x, y, 4, 0.08, 0.5)
		rock := octaveNoise(rockNoise, x, y, 2, 0.15, 0.5)

		switch {
		case elev < cfg.WaterLevel:
			t.Material = MaterialWater
			t.Height = MinHeight
		case elev > cfg.StoneLevel || rock > 0.8:
			t.Material = MaterialStone
			t.Height = NormalizeHeight(float64(MinHeight) + elev*float64(maxH-MinHeight))
		default:
			t.Material = MaterialGrass
			t.Height = NormalizeHeight(float64(MinHeight) + elev*float64(maxH-MinHeight))
		}
	})
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
