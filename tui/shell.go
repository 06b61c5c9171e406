// Package tui is a full-screen terminal shell around a sim.Controller.
//
// Keys: space play/pause, n step, +/- speed, c clear, f fill, t decimate,
// r resize, g/b stamp glider/blinker, arrows move the cursor, enter toggles,
// s save, l load, q or esc quits. Left click toggles the clicked cell.
package tui

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol/codec"
	"github.com/sheikhrachel/go-gol/sim"
)

// errQuit ends the event loop on a user request.
var errQuit = errors.New("quit requested")

const statusRows = 1

var (
	styleDead   = tcell.StyleDefault.Background(tcell.ColorWhite)
	styleAlive  = tcell.StyleDefault.Background(tcell.ColorBlack)
	styleCursor = tcell.StyleDefault.Background(tcell.ColorRed)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewHexColor(0x395060))
)

// Options configures file locations and the resize target of a Shell.
type Options struct {
	SavePath   string
	LoadPath   string
	ResizeRows int
	ResizeCols int
}

// Shell binds terminal input to controller operations and renders snapshots.
type Shell struct {
	mu      sync.Mutex
	ctrl    *sim.Controller
	screen  tcell.Screen
	opts    Options
	curRow  int
	curCol  int
	message string
	// held is whether the left button was down at the last mouse event.
	held bool
}

// New wraps ctrl for display on an already initialized screen.
func New(screen tcell.Screen, ctrl *sim.Controller, opts Options) *Shell {
	if opts.ResizeRows <= 0 {
		opts.ResizeRows = ctrl.Rows()
	}
	if opts.ResizeCols <= 0 {
		opts.ResizeCols = ctrl.Cols()
	}
	s := &Shell{ctrl: ctrl, screen: screen, opts: opts}
	ctrl.SetObserver(s.render)
	return s
}

// Snapshot returns the controller state, serialized with the shell's loops.
func (s *Shell) Snapshot() sim.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Snapshot()
}

// Message returns the last status message shown to the user.
func (s *Shell) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Run drives the simulation until ctx is done or the user quits.
func (s *Shell) Run(ctx context.Context) error {
	s.screen.EnableMouse()
	defer s.screen.DisableMouse()

	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go s.screen.ChannelEvents(events, quit)

	s.mu.Lock()
	s.redraw()
	s.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.tickLoop(ctx) })
	eg.Go(func() error { return s.eventLoop(ctx, events) })

	err := eg.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Shell) tickLoop(ctx context.Context) error {
	for {
		s.mu.Lock()
		interval := s.ctrl.Interval()
		s.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		s.mu.Lock()
		s.ctrl.Tick()
		s.mu.Unlock()
	}
}

func (s *Shell) eventLoop(ctx context.Context, events <-chan tcell.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errQuit
			}
			s.mu.Lock()
			err := s.handle(ev)
			s.mu.Unlock()
			if err != nil {
				return err
			}
		}
	}
}

// handle applies one input event. Callers hold s.mu.
func (s *Shell) handle(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()
		s.redraw()
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0
		wasHeld := s.held
		s.held = pressed
		if !pressed || wasHeld {
			return nil
		}
		x, y := ev.Position()
		r, c := y-statusRows, x/2
		if err := s.ctrl.ToggleCell(r, c); err == nil {
			s.curRow, s.curCol = r, c
			s.redraw()
		}
	case *tcell.EventKey:
		return s.handleKey(ev)
	}
	return nil
}

func (s *Shell) handleKey(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return errQuit
	case tcell.KeyUp:
		s.moveCursor(-1, 0)
	case tcell.KeyDown:
		s.moveCursor(1, 0)
	case tcell.KeyLeft:
		s.moveCursor(0, -1)
	case tcell.KeyRight:
		s.moveCursor(0, 1)
	case tcell.KeyEnter:
		s.report(s.ctrl.ToggleCell(s.curRow, s.curCol), "")
	case tcell.KeyRune:
		return s.handleRune(ev.Rune())
	}
	return nil
}

func (s *Shell) handleRune(r rune) error {
	switch r {
	case 'q':
		return errQuit
	case ' ':
		s.ctrl.SetRunning(!s.ctrl.IsRunning())
		s.redraw()
	case 'n':
		s.ctrl.Step()
	case '+', '=':
		s.ctrl.SetSpeed(s.ctrl.Speed() + 1)
		s.redraw()
	case '-':
		s.ctrl.SetSpeed(s.ctrl.Speed() - 1)
		s.redraw()
	case 'c':
		s.ctrl.ClearAll()
	case 'f':
		s.ctrl.FillRandom()
	case 't':
		killed := s.ctrl.DecimateHalf()
		s.message = fmt.Sprintf("decimated %d cells", killed)
		s.redraw()
	case 'r':
		err := s.ctrl.Resize(s.opts.ResizeRows, s.opts.ResizeCols)
		s.clampCursor()
		s.report(err, "resized")
	case 'g':
		s.report(s.ctrl.Stamp("glider", s.curRow, s.curCol), "")
	case 'b':
		s.report(s.ctrl.Stamp("blinker", s.curRow, s.curCol), "")
	case 's':
		s.report(s.save(), "saved "+s.opts.SavePath)
	case 'l':
		err := s.load()
		s.clampCursor()
		s.report(err, "loaded")
	}
	return nil
}

func (s *Shell) save() error {
	if s.opts.SavePath == "" {
		return errors.New("no save path configured")
	}
	return codec.WriteFile(s.opts.SavePath, s.ctrl.Snapshot().Grid)
}

func (s *Shell) load() error {
	path := s.opts.LoadPath
	if path == "" {
		path = s.opts.SavePath
	}
	if path == "" {
		return errors.New("no load path configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "[load] failed to open file: %+v", path)
	}
	defer f.Close()
	return s.ctrl.LoadFromReader(f)
}

// report sets the status message from an operation result and redraws.
func (s *Shell) report(err error, ok string) {
	switch {
	case err != nil:
		s.message = err.Error()
	case ok != "":
		s.message = ok
	}
	s.redraw()
}

func (s *Shell) moveCursor(dr, dc int) {
	s.curRow += dr
	s.curCol += dc
	s.clampCursor()
	s.redraw()
}

func (s *Shell) clampCursor() {
	s.curRow = min(max(s.curRow, 0), s.ctrl.Rows()-1)
	s.curCol = min(max(s.curCol, 0), s.ctrl.Cols()-1)
}

func (s *Shell) redraw() {
	s.render(s.ctrl.Snapshot())
}

// render draws a snapshot; it is also the controller's observer.
func (s *Shell) render(snap sim.Snapshot) {
	s.screen.Clear()
	width, height := s.screen.Size()

	state := "paused"
	if snap.Running {
		state = "running"
	}
	status := fmt.Sprintf(" Gen: %d | Alive: %d | Speed: %d/s | %s | %dx%d",
		snap.Generation, snap.Alive, snap.Speed, state, snap.Rows, snap.Cols)
	if s.message != "" {
		status += " | " + s.message
	}
	line := []rune(status)
	for x := range width {
		ch := ' '
		if x < len(line) {
			ch = line[x]
		}
		s.screen.SetContent(x, 0, ch, nil, styleStatus)
	}

	for r := 0; r < snap.Rows && r+statusRows < height; r++ {
		for c := 0; c < snap.Cols && 2*c+1 < width; c++ {
			style := styleDead
			switch {
			case r == s.curRow && c == s.curCol:
				style = styleCursor
			case snap.Grid.Alive(r, c):
				style = styleAlive
			}
			s.screen.SetContent(2*c, r+statusRows, ' ', nil, style)
			s.screen.SetContent(2*c+1, r+statusRows, ' ', nil, style)
		}
	}
	s.screen.Show()
}
