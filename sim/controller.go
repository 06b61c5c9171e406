// Package sim drives a Game of Life board: stepping generations, tracking
// counters, and applying manual edits.
//
// A Controller does no locking. Callers must not invoke its methods
// concurrently; drivers with a ticker and an input loop serialize access
// themselves.
package sim

import (
	"io"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol/codec"
	"github.com/sheikhrachel/go-gol/model"
	"github.com/sheikhrachel/go-gol/rules"
)

// ErrConfigLoad marks every failure of LoadFrom. The underlying codec error
// stays reachable through errors.Is as well.
var ErrConfigLoad = errors.New("config load failed")

// historySize is how many past grid hashes are kept for stagnation checks.
const historySize = 5

// LoadError wraps a codec failure at the controller boundary.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return ErrConfigLoad.Error() + ": " + e.Err.Error() }

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConfigLoad) hold for any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrConfigLoad }

// Snapshot is a point-in-time copy of the simulation handed to observers.
// Its Grid is independent of the controller's and may be retained.
type Snapshot struct {
	Grid       *model.Grid
	Rows       int
	Cols       int
	Generation int
	Alive      int
	Running    bool
	Speed      int
}

// Observer receives a Snapshot after a step or a successful mutation.
type Observer func(Snapshot)

// Controller owns the grid and the simulation counters.
type Controller struct {
	grid       *model.Grid
	generation int
	alive      int
	running    bool
	speed      int
	density    float64
	rng        *rand.Rand
	history    []string
	pool       *model.GridPool
	observer   Observer
}

// New builds a Controller with a randomly filled grid.
func New(opts ...Option) (*Controller, error) {
	set := defaultSettings()
	for _, opt := range opts {
		opt(&set)
	}
	if set.rng == nil {
		set.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if err := validateDimensions(set.rows, set.cols); err != nil {
		return nil, errors.Wrap(err, "[New] bad starting size")
	}

	g, _ := model.NewGrid(set.rows, set.cols)
	g.RandomizeWith(set.rng, set.density)
	return &Controller{
		grid:     g,
		alive:    g.CountLivingCells(),
		running:  set.running,
		speed:    set.speed,
		density:  set.density,
		rng:      set.rng,
		pool:     model.NewGridPool(),
		observer: set.observer,
	}, nil
}

func validateDimensions(rows, cols int) error {
	if rows <= 0 || cols <= 0 || rows > model.MaxDimension || cols > model.MaxDimension {
		return errors.Wrapf(model.ErrInvalidDimension, "%dx%d outside [1,%d]", rows, cols, model.MaxDimension)
	}
	return nil
}

// Rows returns the current grid height.
func (c *Controller) Rows() int { return c.grid.Rows() }

// Cols returns the current grid width.
func (c *Controller) Cols() int { return c.grid.Cols() }

// Generation returns the number of generations advanced so far.
func (c *Controller) Generation() int { return c.generation }

// AliveCount returns the number of living cells on the current grid.
func (c *Controller) AliveCount() int { return c.alive }

// IsRunning reports whether periodic ticks advance the simulation.
func (c *Controller) IsRunning() bool { return c.running }

// SetRunning plays or pauses the simulation.
func (c *Controller) SetRunning(running bool) { c.running = running }

// Speed returns the tick rate in ticks per second.
func (c *Controller) Speed() int { return c.speed }

// SetSpeed sets the tick rate, clamped to [MinSpeed, MaxSpeed].
func (c *Controller) SetSpeed(speed int) { c.speed = clampSpeed(speed) }

// Interval is the delay between ticks at the current speed.
func (c *Controller) Interval() time.Duration { return time.Second / time.Duration(c.speed) }

// Density returns the alive probability used for random fills.
func (c *Controller) Density() float64 { return c.density }

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Grid:       c.grid.Clone(),
		Rows:       c.grid.Rows(),
		Cols:       c.grid.Cols(),
		Generation: c.generation,
		Alive:      c.alive,
		Running:    c.running,
		Speed:      c.speed,
	}
}

// SetObserver replaces the change callback; nil disables notifications.
func (c *Controller) SetObserver(fn Observer) { c.observer = fn }

func (c *Controller) notify() {
	if c.observer != nil {
		c.observer(c.Snapshot())
	}
}

// Step advances one generation regardless of the running state.
func (c *Controller) Step() {
	c.history = append(c.history, c.grid.GetGridHash())
	if len(c.history) > historySize {
		c.history = c.history[1:]
	}

	prev := c.grid
	c.grid = rules.NextGenerationPooled(prev, c.pool)
	// Snapshots are copies, so nothing outside the controller holds prev.
	c.pool.Put(prev)
	c.generation++
	c.alive = c.grid.CountLivingCells()
	c.notify()
}

// StepN advances n generations.
func (c *Controller) StepN(n int) {
	for range n {
		c.Step()
	}
}

// Tick advances one generation only while running. It reports whether a step happened.
func (c *Controller) Tick() bool {
	if !c.running {
		return false
	}
	c.Step()
	return true
}

// Stagnant reports whether the current grid repeats one of the last three
// generations, i.e. the board is a still life or an oscillator of period <= 3.
func (c *Controller) Stagnant() bool {
	if len(c.history) == 0 {
		return false
	}
	current := c.grid.GetGridHash()
	recent := c.history[max(0, len(c.history)-3):]
	return slices.Contains(recent, current)
}

// mutate pauses, applies fn to the grid, restores the previous running state
// and refreshes the alive count.
func (c *Controller) mutate(fn func() error) error {
	wasRunning := c.running
	c.running = false
	err := fn()
	c.running = wasRunning
	if err != nil {
		return err
	}
	c.history = nil
	c.alive = c.grid.CountLivingCells()
	c.notify()
	return nil
}

// Resize replaces the grid with a freshly randomized one of the given size.
func (c *Controller) Resize(rows, cols int) error {
	if err := validateDimensions(rows, cols); err != nil {
		return errors.Wrap(err, "[Resize]")
	}
	return c.mutate(func() error {
		g, err := model.NewGrid(rows, cols)
		if err != nil {
			return err
		}
		g.RandomizeWith(c.rng, c.density)
		c.grid = g
		return nil
	})
}

// ToggleCell flips the cell at (r, col).
func (c *Controller) ToggleCell(r, col int) error {
	return c.mutate(func() error {
		return errors.Wrap(c.grid.Toggle(r, col), "[ToggleCell]")
	})
}

// SetCell forces the cell at (r, col) to the given state.
func (c *Controller) SetCell(r, col int, alive bool) error {
	return c.mutate(func() error {
		return errors.Wrap(c.grid.Set(r, col, alive), "[SetCell]")
	})
}

// FillRandom re-randomizes every cell of the current grid.
func (c *Controller) FillRandom() {
	_ = c.mutate(func() error {
		c.grid.RandomizeWith(c.rng, c.density)
		return nil
	})
}

// ClearAll kills every cell.
func (c *Controller) ClearAll() {
	_ = c.mutate(func() error {
		c.grid.Clear()
		return nil
	})
}

// DecimateHalf kills floor(alive/2) living cells chosen uniformly at random
// and returns how many were killed. Victims are drawn from the list of
// living cells, so the run time is bounded by the grid size.
func (c *Controller) DecimateHalf() int {
	var killed int
	_ = c.mutate(func() error {
		alive := c.grid.AliveCells()
		toKill := len(alive) / 2
		// Partial Fisher-Yates: the first toKill entries become a uniform sample.
		for i := range toKill {
			j := i + c.rng.IntN(len(alive)-i)
			alive[i], alive[j] = alive[j], alive[i]
			_ = c.grid.Set(alive[i].Row, alive[i].Col, false)
		}
		killed = toKill
		return nil
	})
	return killed
}

// Stamp places a built-in pattern with its top-left corner at (r, col).
func (c *Controller) Stamp(name string, r, col int) error {
	p, err := model.PatternByName(name)
	if err != nil {
		return errors.Wrap(err, "[Stamp]")
	}
	return c.mutate(func() error {
		return errors.Wrap(c.grid.Stamp(r, col, p), "[Stamp]")
	})
}

// LoadFrom replaces the grid with one decoded from text. On failure the
// controller is left untouched and the error satisfies errors.Is(err, ErrConfigLoad).
// The generation counter is kept across loads.
func (c *Controller) LoadFrom(text string) error {
	g, err := codec.Decode(text)
	if err != nil {
		return &LoadError{Err: err}
	}
	return c.install(g)
}

// LoadFromReader is LoadFrom reading the configuration from r.
func (c *Controller) LoadFromReader(r io.Reader) error {
	g, err := codec.DecodeFrom(r)
	if err != nil {
		return &LoadError{Err: err}
	}
	return c.install(g)
}

func (c *Controller) install(g *model.Grid) error {
	return c.mutate(func() error {
		c.grid = g
		return nil
	})
}

// SaveTo encodes the current grid.
func (c *Controller) SaveTo() string {
	return codec.Encode(c.grid)
}

// SaveToWriter writes the encoded grid to w.
func (c *Controller) SaveToWriter(w io.Writer) error {
	return errors.Wrap(codec.EncodeTo(w, c.grid), "[SaveToWriter]")
}
