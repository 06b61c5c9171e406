package model

import (
	"crypto/md5"
	"fmt"
	"math/rand/v2"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidDimension is returned when a grid would have a non-positive
	// (or, on resize, oversized) number of rows or columns.
	ErrInvalidDimension = errors.New("invalid grid dimension")
	// ErrOutOfBounds is returned when a cell outside the grid is addressed.
	ErrOutOfBounds = errors.New("cell out of bounds")
)

// MaxDimension is the largest accepted row or column count on resize.
const MaxDimension = 1000

// Grid represents the game board. Cells are stored row-major, cells[r][c].
type Grid struct {
	rows  int
	cols  int
	cells [][]bool
}

// NewGrid creates a new all-dead grid with the specified dimensions
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimension, "[NewGrid] %dx%d", rows, cols)
	}
	cells := make([][]bool, rows)
	for i := range cells {
		cells[i] = make([]bool, cols)
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: cells,
	}, nil
}

// Rows returns the height of the grid
func (g *Grid) Rows() int {
	return g.rows
}

// Cols returns the width of the grid
func (g *Grid) Cols() int {
	return g.cols
}

// InBounds reports whether (r, c) addresses a cell of the grid
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.rows && c >= 0 && c < g.cols
}

// Get returns the state of a cell
func (g *Grid) Get(r, c int) (bool, error) {
	if !g.InBounds(r, c) {
		return false, errors.Wrapf(ErrOutOfBounds, "[Get] (%d,%d) in %dx%d grid", r, c, g.rows, g.cols)
	}
	return g.cells[r][c], nil
}

// Alive returns the state of a cell, treating anything outside the grid as dead.
func (g *Grid) Alive(r, c int) bool {
	if !g.InBounds(r, c) {
		return false
	}
	return g.cells[r][c]
}

// Set sets a cell to alive (true) or dead (false)
func (g *Grid) Set(r, c int, alive bool) error {
	if !g.InBounds(r, c) {
		return errors.Wrapf(ErrOutOfBounds, "[Set] (%d,%d) in %dx%d grid", r, c, g.rows, g.cols)
	}
	g.cells[r][c] = alive
	return nil
}

// Toggle flips a single cell
func (g *Grid) Toggle(r, c int) error {
	if !g.InBounds(r, c) {
		return errors.Wrapf(ErrOutOfBounds, "[Toggle] (%d,%d) in %dx%d grid", r, c, g.rows, g.cols)
	}
	g.cells[r][c] = !g.cells[r][c]
	return nil
}

// Clear clears all cells
func (g *Grid) Clear() {
	for r := range g.rows {
		for c := range g.cols {
			g.cells[r][c] = false
		}
	}
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c] {
				count++
			}
		}
	}
	return
}

// AliveCells returns the coordinates of every living cell in row-major order.
func (g *Grid) AliveCells() []Cell {
	alive := make([]Cell, 0, g.rows)
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c] {
				alive = append(alive, Cell{Row: r, Col: c})
			}
		}
	}
	return alive
}

// Randomize fills the grid with random living cells using the global source
func (g *Grid) Randomize(density float64) {
	g.RandomizeWith(nil, density)
}

// RandomizeWith sets each cell alive with probability density, drawing from rng.
// A nil rng uses the package-level source.
func (g *Grid) RandomizeWith(rng *rand.Rand, density float64) {
	next := rand.Float64
	if rng != nil {
		next = rng.Float64
	}
	for r := range g.rows {
		for c := range g.cols {
			g.cells[r][c] = next() < density
		}
	}
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	cells := make([][]bool, g.rows)
	for r := range cells {
		cells[r] = make([]bool, g.cols)
		copy(cells[r], g.cells[r])
	}
	return &Grid{rows: g.rows, cols: g.cols, cells: cells}
}

// Equal reports whether both grids have the same dimensions and cell states
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c] != o.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// GetGridHash returns an efficient MD5 hash of the current grid state
func (g *Grid) GetGridHash() string {
	h := md5.New()
	fmt.Fprintf(h, "%d:%d:", g.rows, g.cols)
	for r := range g.rows {
		for c := range g.cols {
			if g.cells[r][c] {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Cell is a (row, col) coordinate on the grid
type Cell struct {
	Row, Col int
}
