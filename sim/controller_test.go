package sim

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol/codec"
	"github.com/sheikhrachel/go-gol/model"
)

func newTestController(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	c, err := New(append([]Option{WithSeed(42)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// checkAlive verifies the cached alive count against a full scan.
func checkAlive(t *testing.T, c *Controller) {
	t.Helper()
	if got, want := c.AliveCount(), c.Snapshot().Grid.CountLivingCells(); got != want {
		t.Fatalf("AliveCount = %d, grid holds %d living cells", got, want)
	}
}

func TestNewDefaults(t *testing.T) {
	c := newTestController(t)
	if c.Rows() != DefaultRows || c.Cols() != DefaultCols {
		t.Fatalf("size %dx%d, want %dx%d", c.Rows(), c.Cols(), DefaultRows, DefaultCols)
	}
	if !c.IsRunning() {
		t.Fatal("controller should start running")
	}
	if c.Speed() != DefaultSpeed {
		t.Fatalf("speed %d, want %d", c.Speed(), DefaultSpeed)
	}
	if c.Generation() != 0 {
		t.Fatalf("generation %d, want 0", c.Generation())
	}
	checkAlive(t, c)
}

func TestNewRejectsBadSize(t *testing.T) {
	if _, err := New(WithSize(0, 10)); !errors.Is(err, model.ErrInvalidDimension) {
		t.Fatalf("New(0x10) err = %v", err)
	}
}

func TestSeedIsReproducible(t *testing.T) {
	a := newTestController(t)
	b := newTestController(t)
	if !a.Snapshot().Grid.Equal(b.Snapshot().Grid) {
		t.Fatal("same seed produced different starting grids")
	}
}

func TestStepCountsGenerations(t *testing.T) {
	c := newTestController(t, WithSize(12, 12))
	for i := 1; i <= 5; i++ {
		c.Step()
		if c.Generation() != i {
			t.Fatalf("generation %d after %d steps", c.Generation(), i)
		}
		checkAlive(t, c)
	}
}

func TestTickRespectsRunning(t *testing.T) {
	c := newTestController(t, WithRunning(false))
	if c.Tick() {
		t.Fatal("Tick stepped while paused")
	}
	if c.Generation() != 0 {
		t.Fatal("paused Tick advanced the generation")
	}
	c.SetRunning(true)
	if !c.Tick() || c.Generation() != 1 {
		t.Fatal("running Tick did not step")
	}
	c.SetRunning(false)
	c.Step()
	if c.Generation() != 2 {
		t.Fatal("manual Step should work while paused")
	}
}

func TestSetSpeedClamps(t *testing.T) {
	c := newTestController(t)
	cases := []struct{ in, want int }{
		{0, 1}, {-5, 1}, {1, 1}, {500, 500}, {1000, 1000}, {1001, 1000},
	}
	for _, tc := range cases {
		c.SetSpeed(tc.in)
		if c.Speed() != tc.want {
			t.Errorf("SetSpeed(%d) -> %d, want %d", tc.in, c.Speed(), tc.want)
		}
	}
	c.SetSpeed(4)
	if c.Interval() != 250*time.Millisecond {
		t.Fatalf("Interval at speed 4 = %v", c.Interval())
	}
}

func TestResize(t *testing.T) {
	c := newTestController(t)
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {1001, 5}, {5, 1001}, {-3, 3}} {
		if err := c.Resize(dims[0], dims[1]); !errors.Is(err, model.ErrInvalidDimension) {
			t.Errorf("Resize(%d,%d) err = %v, want ErrInvalidDimension", dims[0], dims[1], err)
		}
	}
	if c.Rows() != DefaultRows || c.Cols() != DefaultCols {
		t.Fatal("failed resize changed the grid")
	}

	if err := c.Resize(10, 10); err != nil {
		t.Fatalf("Resize(10,10): %v", err)
	}
	snap := c.Snapshot()
	if snap.Rows != 10 || snap.Cols != 10 || snap.Grid.Rows() != 10 || snap.Grid.Cols() != 10 {
		t.Fatalf("grid is %dx%d after Resize(10,10)", snap.Grid.Rows(), snap.Grid.Cols())
	}
	if !c.IsRunning() {
		t.Fatal("Resize did not resume a running simulation")
	}
	checkAlive(t, c)
}

func TestSizeFollowsGridAfterResizeAndLoad(t *testing.T) {
	c := newTestController(t, WithSize(4, 6))
	if err := c.Resize(8, 3); err != nil {
		t.Fatalf("Resize(8,3): %v", err)
	}
	if c.Rows() != 8 || c.Cols() != 3 || !strings.HasPrefix(c.SaveTo(), "8 3\n") {
		t.Fatalf("size %dx%d after Resize(8,3)", c.Rows(), c.Cols())
	}
	if err := c.LoadFrom("2 5\n00000\n11111\n"); err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if c.Rows() != 2 || c.Cols() != 5 || !strings.HasPrefix(c.SaveTo(), "2 5\n") {
		t.Fatalf("size %dx%d after loading a 2x5 grid", c.Rows(), c.Cols())
	}
}

func TestBulkOpsKeepPausedState(t *testing.T) {
	c := newTestController(t, WithRunning(false))
	c.FillRandom()
	c.ClearAll()
	c.DecimateHalf()
	if c.IsRunning() {
		t.Fatal("bulk operation started a paused simulation")
	}
}

func TestToggleCell(t *testing.T) {
	c := newTestController(t)
	c.ClearAll()
	if err := c.ToggleCell(3, 4); err != nil {
		t.Fatalf("ToggleCell: %v", err)
	}
	if c.AliveCount() != 1 || !c.Snapshot().Grid.Alive(3, 4) {
		t.Fatal("ToggleCell did not bring the cell alive")
	}
	if err := c.ToggleCell(c.Rows(), 0); !errors.Is(err, model.ErrOutOfBounds) {
		t.Fatalf("ToggleCell out of bounds err = %v", err)
	}
	checkAlive(t, c)
}

func TestFillAndClear(t *testing.T) {
	c := newTestController(t, WithDensity(1))
	c.ClearAll()
	if c.AliveCount() != 0 {
		t.Fatalf("ClearAll left %d cells", c.AliveCount())
	}
	c.FillRandom()
	if c.AliveCount() != c.Rows()*c.Cols() {
		t.Fatalf("FillRandom at density 1 gave %d cells", c.AliveCount())
	}
	checkAlive(t, c)
}

func TestDecimateHalf(t *testing.T) {
	c := newTestController(t, WithSize(10, 10))
	c.ClearAll()
	// Pack the ten living cells into one corner so random probing would rarely hit them.
	for i := range 10 {
		if err := c.SetCell(i/5, i%5, true); err != nil {
			t.Fatalf("SetCell: %v", err)
		}
	}
	if c.AliveCount() != 10 {
		t.Fatalf("setup produced %d living cells", c.AliveCount())
	}
	if killed := c.DecimateHalf(); killed != 5 {
		t.Fatalf("DecimateHalf killed %d, want 5", killed)
	}
	if c.AliveCount() != 5 {
		t.Fatalf("alive %d after DecimateHalf, want 5", c.AliveCount())
	}
	checkAlive(t, c)
}

func TestDecimateHalfOddAndEmpty(t *testing.T) {
	c := newTestController(t, WithSize(5, 5))
	c.ClearAll()
	if killed := c.DecimateHalf(); killed != 0 {
		t.Fatalf("DecimateHalf on empty grid killed %d", killed)
	}
	for i := range 7 {
		_ = c.SetCell(4, i%5, true)
		_ = c.SetCell(3, i%5, i >= 5)
	}
	before := c.AliveCount()
	c.DecimateHalf()
	if c.AliveCount() != before-before/2 {
		t.Fatalf("alive %d after decimating %d", c.AliveCount(), before)
	}
}

func TestBlinkerThroughController(t *testing.T) {
	c := newTestController(t, WithSize(5, 5))
	if err := c.LoadFrom("5 5\n00000\n00100\n00100\n00100\n00000\n"); err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	start := c.Snapshot().Grid
	c.Step()
	if c.Snapshot().Grid.Equal(start) {
		t.Fatal("blinker did not change after one generation")
	}
	if c.Stagnant() {
		t.Fatal("stagnant after a single step")
	}
	c.Step()
	if !c.Snapshot().Grid.Equal(start) {
		t.Fatal("blinker did not return after two generations")
	}
	if !c.Stagnant() {
		t.Fatal("period-2 oscillator not reported as stagnant")
	}
}

func TestLoadKeepsGenerationCount(t *testing.T) {
	c := newTestController(t)
	c.StepN(3)
	if err := c.LoadFrom("2 3\n111\n000\n"); err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if c.Generation() != 3 {
		t.Fatalf("generation %d after load, want 3", c.Generation())
	}
	if c.Rows() != 2 || c.Cols() != 3 || c.AliveCount() != 3 {
		t.Fatalf("loaded %dx%d with %d alive", c.Rows(), c.Cols(), c.AliveCount())
	}
}

func TestLoadFailureLeavesStateUnchanged(t *testing.T) {
	c := newTestController(t)
	c.StepN(2)
	before := c.Snapshot()

	err := c.LoadFrom("abc def\n")
	if !errors.Is(err, ErrConfigLoad) {
		t.Fatalf("err = %v, want ErrConfigLoad", err)
	}
	if !errors.Is(err, codec.ErrMalformedConfig) {
		t.Fatalf("err = %v, want ErrMalformedConfig in chain", err)
	}

	err = c.LoadFromReader(strings.NewReader("3 3\n000\n"))
	if !errors.Is(err, ErrConfigLoad) || !errors.Is(err, codec.ErrTruncatedConfig) {
		t.Fatalf("truncated load err = %v", err)
	}

	after := c.Snapshot()
	if !after.Grid.Equal(before.Grid) || after.Generation != before.Generation || after.Alive != before.Alive {
		t.Fatal("failed load modified the controller")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := newTestController(t, WithSize(7, 9))
	saved := c.SaveTo()

	var buf bytes.Buffer
	if err := c.SaveToWriter(&buf); err != nil {
		t.Fatalf("SaveToWriter: %v", err)
	}
	if buf.String() != saved {
		t.Fatal("SaveTo and SaveToWriter disagree")
	}

	other := newTestController(t, WithSeed(7))
	if err := other.LoadFrom(saved); err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !other.Snapshot().Grid.Equal(c.Snapshot().Grid) {
		t.Fatal("loaded grid differs from saved grid")
	}
}

func TestStamp(t *testing.T) {
	c := newTestController(t, WithSize(6, 6))
	c.ClearAll()
	if err := c.Stamp("block", 1, 1); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if c.AliveCount() != 4 {
		t.Fatalf("block stamped %d cells", c.AliveCount())
	}
	if err := c.Stamp("nope", 0, 0); !errors.Is(err, model.ErrUnknownPattern) {
		t.Fatalf("unknown pattern err = %v", err)
	}
	c.Step()
	if !c.Stagnant() {
		t.Fatal("block should be a still life")
	}
}

func TestObserverSeesEveryChange(t *testing.T) {
	var snaps []Snapshot
	c := newTestController(t, WithSize(8, 8), WithObserver(func(s Snapshot) {
		snaps = append(snaps, s)
	}))

	c.Step()
	c.ClearAll()
	_ = c.ToggleCell(0, 0)
	_ = c.ToggleCell(99, 99) // fails, no notification
	c.FillRandom()
	c.DecimateHalf()
	_ = c.LoadFrom("bad")
	_ = c.LoadFrom("1 1\n1\n")
	_ = c.Resize(4, 4)

	if len(snaps) != 7 {
		t.Fatalf("observer called %d times, want 7", len(snaps))
	}
	if snaps[0].Generation != 1 {
		t.Fatalf("first snapshot generation %d", snaps[0].Generation)
	}
	if snaps[2].Alive != 1 {
		t.Fatalf("toggle snapshot alive %d, want 1", snaps[2].Alive)
	}
	for i, s := range snaps {
		if s.Alive != s.Grid.CountLivingCells() {
			t.Fatalf("snapshot %d alive %d, grid has %d", i, s.Alive, s.Grid.CountLivingCells())
		}
	}

	// Snapshots are copies.
	held := snaps[len(snaps)-1].Grid
	before := held.Clone()
	c.ClearAll()
	if !held.Equal(before) {
		t.Fatal("snapshot grid changed after a later mutation")
	}
}
