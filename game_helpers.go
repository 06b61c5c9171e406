package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol/codec"
	"github.com/sheikhrachel/go-gol/sim"
	"github.com/sheikhrachel/go-gol/utils"
)

const defaultConfigFile = "config.json"

// parseConfig reads the config file named by -config (if present) and then
// applies command-line flags on top of it.
func parseConfig(args []string, logf func(string, ...any)) (utils.Config, error) {
	probe := flag.NewFlagSet("gol", flag.ContinueOnError)
	probe.SetOutput(io.Discard)
	configPath := probe.String("config", defaultConfigFile, "JSON or YAML config file")
	scratch := utils.DefaultConfig()
	scratch.Bind(probe)
	_ = probe.Parse(args)

	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		if *configPath != defaultConfigFile || !errors.Is(err, os.ErrNotExist) {
			logf("Using default configuration: %v", err)
		}
		config = utils.DefaultConfig()
	}

	fs := flag.NewFlagSet("gol", flag.ContinueOnError)
	fs.String("config", defaultConfigFile, "JSON or YAML config file")
	config.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return config, errors.Wrap(err, "[parseConfig] bad flags")
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// initializeGame sets up the controller and loads the starting pattern, if any
func initializeGame(config utils.Config) (*sim.Controller, error) {
	ctrl, err := sim.New(config.Options()...)
	if err != nil {
		return nil, err
	}
	if config.PatternFile == "" {
		return ctrl, nil
	}

	f, err := os.Open(config.PatternFile)
	if err != nil {
		return nil, errors.Wrapf(err, "[initializeGame] failed to open pattern: %+v", config.PatternFile)
	}
	defer f.Close()
	if err := ctrl.LoadFromReader(f); err != nil {
		return nil, errors.Wrapf(err, "[initializeGame] failed to load pattern: %+v", config.PatternFile)
	}
	return ctrl, nil
}

// displayGameInfo shows the initial game information
func displayGameInfo(w io.Writer, config utils.Config, ctrl *sim.Controller) {
	fmt.Fprintf(w, "Grid: %dx%d | Initial living cells: %d | Speed: %d gen/sec\n",
		ctrl.Rows(), ctrl.Cols(), ctrl.AliveCount(), ctrl.Speed())
	if config.MaxGenerations > 0 {
		fmt.Fprintf(w, "Stopping after %d generations\n", config.MaxGenerations)
	}
	fmt.Fprintln(w, "Press Ctrl+C to exit gracefully")
	fmt.Fprintln(w)
}

// gameStatus summarizes one generation for display
type gameStatus struct {
	Generation  int
	LivingCells int
	Density     float64
	Status      string
	Stagnant    bool
}

// updateGameState updates the stats and returns status information
func updateGameState(snap sim.Snapshot, stagnant bool, frameDuration time.Duration, stats *utils.Stats) gameStatus {
	density := float64(snap.Alive) / float64(snap.Rows*snap.Cols) * 100
	stats.Update(snap.Generation, snap.Alive, frameDuration)

	status := "Active"
	if stagnant {
		status = fmt.Sprintf("Stagnant (%d)", stats.Observe(true))
	} else {
		stats.Observe(false)
	}
	if snap.Alive == 0 {
		status = "Extinct"
	}

	return gameStatus{
		Generation:  snap.Generation,
		LivingCells: snap.Alive,
		Density:     density,
		Status:      status,
		Stagnant:    stagnant,
	}
}

// displayGameStatus shows the current game status
func displayGameStatus(w io.Writer, gs gameStatus, stats *utils.Stats) {
	fmt.Fprintf(w, "Gen: %d | Living: %d | Density: %.1f%% | Status: %s\n",
		gs.Generation, gs.LivingCells, gs.Density, gs.Status)
	fmt.Fprintf(w, "Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, stats.Runtime().Seconds())
	fmt.Fprintln(w)
}

// checkStopConditions determines if a headless run should end
func checkStopConditions(gs gameStatus, stats *utils.Stats, config utils.Config) (bool, string) {
	if gs.LivingCells == 0 {
		return true, "extinction"
	}
	if config.StagnationThreshold > 0 && stats.StagnantCount >= config.StagnationThreshold {
		return true, "stagnation detected"
	}
	if config.MaxGenerations > 0 && gs.Generation >= config.MaxGenerations {
		return true, fmt.Sprintf("reached maximum generations limit (%d)", config.MaxGenerations)
	}
	return false, ""
}

// saveGame writes the current board to the configured save file
func saveGame(ctrl *sim.Controller, path string) error {
	if path == "" {
		return errors.New("[saveGame] no save file configured")
	}
	return codec.WriteFile(path, ctrl.Snapshot().Grid)
}
