package utils

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sheikhrachel/go-gol/model"
	"github.com/sheikhrachel/go-gol/sim"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the configuration for the game
type Config struct {
	Rows                int     `json:"rows" yaml:"rows"`
	Cols                int     `json:"cols" yaml:"cols"`
	Speed               int     `json:"speed" yaml:"speed"`
	Running             bool    `json:"running" yaml:"running"`
	RandomDensity       float64 `json:"random_density" yaml:"random_density"`
	Seed                uint64  `json:"seed" yaml:"seed"`
	PatternFile         string  `json:"pattern_file" yaml:"pattern_file"`
	SaveFile            string  `json:"save_file" yaml:"save_file"`
	SaveOnExit          bool    `json:"save_on_exit" yaml:"save_on_exit"`
	MaxGenerations      int     `json:"max_generations" yaml:"max_generations"`
	StagnationThreshold int     `json:"stagnation_threshold" yaml:"stagnation_threshold"`
	Interactive         bool    `json:"interactive" yaml:"interactive"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Rows:                sim.DefaultRows,
		Cols:                sim.DefaultCols,
		Speed:               sim.DefaultSpeed,
		Running:             true,
		RandomDensity:       sim.DefaultDensity,
		SaveFile:            "board.cyb",
		MaxGenerations:      0,
		StagnationThreshold: 5,
		Interactive:         false,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// Validate checks that every setting is usable by the simulation
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 || c.Rows > model.MaxDimension || c.Cols > model.MaxDimension {
		return errors.Wrapf(model.ErrInvalidDimension, "[Validate] rows=%d cols=%d", c.Rows, c.Cols)
	}
	if c.RandomDensity < 0 || c.RandomDensity > 1 {
		return errors.Wrapf(ErrInvalidConfig, "[Validate] random_density %v outside [0,1]", c.RandomDensity)
	}
	if c.MaxGenerations < 0 {
		return errors.Wrapf(ErrInvalidConfig, "[Validate] max_generations %d is negative", c.MaxGenerations)
	}
	return nil
}

// Bind attaches the configuration to the provided FlagSet so flags override file values.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Rows, "rows", c.Rows, "grid height")
	fs.IntVar(&c.Cols, "cols", c.Cols, "grid width")
	fs.IntVar(&c.Speed, "speed", c.Speed, "ticks per second, clamped to [1,1000]")
	fs.BoolVar(&c.Running, "running", c.Running, "start with the simulation playing")
	fs.Float64Var(&c.RandomDensity, "density", c.RandomDensity, "alive probability for random fills")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed, 0 picks one")
	fs.StringVar(&c.PatternFile, "load", c.PatternFile, "initial .cyb configuration to load")
	fs.StringVar(&c.SaveFile, "save", c.SaveFile, "where to save the board")
	fs.BoolVar(&c.SaveOnExit, "save-on-exit", c.SaveOnExit, "save the board when the run ends")
	fs.IntVar(&c.MaxGenerations, "max-gen", c.MaxGenerations, "stop after this many generations, 0 runs forever")
	fs.IntVar(&c.StagnationThreshold, "stagnation", c.StagnationThreshold, "stagnant generations before a headless run stops, 0 never stops")
	fs.BoolVar(&c.Interactive, "interactive", c.Interactive, "run the full-screen interactive shell")
}

// Options translates the configuration into controller options
func (c Config) Options() []sim.Option {
	opts := []sim.Option{
		sim.WithSize(c.Rows, c.Cols),
		sim.WithSpeed(c.Speed),
		sim.WithDensity(c.RandomDensity),
		sim.WithRunning(c.Running),
	}
	if c.Seed != 0 {
		opts = append(opts, sim.WithSeed(c.Seed))
	}
	return opts
}
