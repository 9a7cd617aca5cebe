// Package config loads hexabots settings from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all hexabots settings.
type Config struct {
	Board   BoardConfig   `yaml:"board"`
	Match   MatchConfig   `yaml:"match"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// BoardConfig controls world generation.
type BoardConfig struct {
	Width             int    `yaml:"width"`
	Height            int    `yaml:"height"`
	Seed              int64  `yaml:"seed"`
	Terrain           string `yaml:"terrain"` // "flat" or "noise"
	CharactersPerTeam int    `yaml:"characters_per_team"`
}

// MatchConfig controls how a match is played.
type MatchConfig struct {
	ChargeRate      float64 `yaml:"charge_rate"`
	HumanTeams      []int   `yaml:"human_teams"` // team indices driven from stdin
	Animate         bool    `yaml:"animate"`     // play effects in real time
	Speed           float64 `yaml:"speed"`
	MaxTurns        uint64  `yaml:"max_turns"` // 0 = until game over
	RandomizeCharge bool    `yaml:"randomize_charge"`
	ChargeSeed      int64   `yaml:"charge_seed"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the settings used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. Missing values take defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Board.Width == 0 {
		c.Board.Width = 160
	}
	if c.Board.Height == 0 {
		c.Board.Height = 160
	}
	if c.Board.Terrain == "" {
		c.Board.Terrain = "flat"
	}
	if c.Board.CharactersPerTeam == 0 {
		c.Board.CharactersPerTeam = 1
	}
	if c.Match.ChargeRate == 0 {
		c.Match.ChargeRate = 0.001
	}
	if c.Match.Speed == 0 {
		c.Match.Speed = 1
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "data/hexabots.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Board.Width < 0 || c.Board.Height < 0:
		return fmt.Errorf("board: size %dx%d", c.Board.Width, c.Board.Height)
	case c.Board.Terrain != "flat" && c.Board.Terrain != "noise":
		return fmt.Errorf("board: unknown terrain %q", c.Board.Terrain)
	case c.Board.CharactersPerTeam < 0:
		return fmt.Errorf("board: characters_per_team %d", c.Board.CharactersPerTeam)
	case !(c.Match.ChargeRate > 0):
		return fmt.Errorf("match: charge_rate must be positive, got %v", c.Match.ChargeRate)
	case c.Match.Speed < 0:
		return fmt.Errorf("match: speed %v", c.Match.Speed)
	}
	for _, t := range c.Match.HumanTeams {
		if t < 0 {
			return fmt.Errorf("match: human team %d", t)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log: level %q: %w", l.Level, err)
	}
	return level, nil
}
