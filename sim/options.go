package sim

import "math/rand/v2"

const (
	// DefaultRows and DefaultCols size the board a Controller starts with.
	DefaultRows = 30
	DefaultCols = 30
	// DefaultSpeed is the starting tick rate in ticks per second.
	DefaultSpeed = 3
	// DefaultDensity is the probability of a cell starting alive on random fills.
	DefaultDensity = 0.5

	MinSpeed = 1
	MaxSpeed = 1000
)

// settings holds the construction-time values Options write to.
type settings struct {
	rows, cols int
	running    bool
	speed      int
	density    float64
	rng        *rand.Rand
	observer   Observer
}

func defaultSettings() settings {
	return settings{
		rows:    DefaultRows,
		cols:    DefaultCols,
		running: true,
		speed:   DefaultSpeed,
		density: DefaultDensity,
	}
}

// Option configures a Controller at construction time.
type Option func(*settings)

// WithSize sets the starting grid dimensions.
func WithSize(rows, cols int) Option {
	return func(s *settings) {
		s.rows, s.cols = rows, cols
	}
}

// WithSpeed sets the starting tick rate; it is clamped like SetSpeed.
func WithSpeed(speed int) Option {
	return func(s *settings) {
		s.speed = clampSpeed(speed)
	}
}

// WithDensity sets the alive probability used by resize and random fill.
func WithDensity(density float64) Option {
	return func(s *settings) {
		s.density = min(max(density, 0), 1)
	}
}

// WithSeed makes every random operation reproducible.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRunning sets whether the controller starts in the running state.
func WithRunning(running bool) Option {
	return func(s *settings) {
		s.running = running
	}
}

// WithObserver registers the callback receiving a Snapshot after each change.
func WithObserver(fn Observer) Option {
	return func(s *settings) {
		s.observer = fn
	}
}

func clampSpeed(speed int) int {
	return min(max(speed, MinSpeed), MaxSpeed)
}
