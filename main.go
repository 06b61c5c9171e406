package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol/model"
	"github.com/sheikhrachel/go-gol/sim"
	"github.com/sheikhrachel/go-gol/tui"
	"github.com/sheikhrachel/go-gol/utils"
)

// runHeadless prints every generation to w until a stop condition or ctx ends the run
func runHeadless(ctx context.Context, w io.Writer, ctrl *sim.Controller, config utils.Config, clearScreen bool) error {
	renderer := model.NewTerminalRenderer(w)
	stats := utils.NewStats()
	displayGameInfo(w, config, ctrl)

	if !ctrl.IsRunning() {
		return renderer.Display(ctrl.Snapshot().Grid)
	}

	var (
		last          gameStatus
		renderErr     error
		lastFrameTime = time.Now()
	)
	ctrl.SetObserver(func(snap sim.Snapshot) {
		frameStart := time.Now()
		if clearScreen {
			renderer.Clear()
		}
		last = updateGameState(snap, ctrl.Stagnant(), frameStart.Sub(lastFrameTime), stats)
		lastFrameTime = frameStart

		displayGameStatus(w, last, stats)
		if err := renderer.Display(snap.Grid); err != nil && renderErr == nil {
			renderErr = err
		}
	})
	defer ctrl.SetObserver(nil)

	for {
		timer := time.NewTimer(ctrl.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			fmt.Fprintln(w, "\n🛑 Shutting down gracefully...")
			fmt.Fprintf(w, "Final stats: %d generations in %.1f seconds\n",
				ctrl.Generation(), stats.Runtime().Seconds())
			fmt.Fprintf(w, "Average: %.1f gen/sec, %.1f avg population\n",
				stats.GenerationsPerSecond, stats.AveragePopulation)
			return nil
		case <-timer.C:
		}

		ctrl.Tick()
		if renderErr != nil {
			return errors.Wrap(renderErr, "[runHeadless] failed to render")
		}
		if stop, reason := checkStopConditions(last, stats, config); stop {
			fmt.Fprintf(w, "\n🏁 Stopping due to %s\n", reason)
			return nil
		}
	}
}

// runInteractive hands the controller to the full-screen shell
func runInteractive(ctx context.Context, ctrl *sim.Controller, config utils.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "[runInteractive] failed to create screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "[runInteractive] failed to init screen")
	}
	defer screen.Fini()

	shell := tui.New(screen, ctrl, tui.Options{
		SavePath:   config.SaveFile,
		LoadPath:   config.PatternFile,
		ResizeRows: config.Rows,
		ResizeCols: config.Cols,
	})
	return shell.Run(ctx)
}

func main() {
	config, err := parseConfig(os.Args[1:], log.Printf)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	ctrl, err := initializeGame(config)
	if err != nil {
		log.Fatal(err)
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Interactive {
		err = runInteractive(ctx, ctrl, config)
	} else {
		err = runHeadless(ctx, os.Stdout, ctrl, config, true)
	}
	if err != nil {
		log.Print(err)
	}

	if config.SaveOnExit {
		if err := saveGame(ctrl, config.SaveFile); err != nil {
			log.Printf("Failed to save board: %v", err)
		} else {
			log.Printf("Saved board to %s", config.SaveFile)
		}
	}
}
