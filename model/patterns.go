package model

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownPattern is returned when a pattern name has no registered shape.
var ErrUnknownPattern = errors.New("unknown pattern")

// Pattern is a small rectangular shape, rows of alive/dead cells.
type Pattern [][]bool

// Glider is the classic diagonal spaceship.
var Glider = Pattern{
	{false, true, false},
	{false, false, true},
	{true, true, true},
}

// Blinker is the period-2 oscillator.
var Blinker = Pattern{
	{true, true, true},
}

// Block is the 2x2 still life.
var Block = Pattern{
	{true, true},
	{true, true},
}

var patterns = map[string]Pattern{
	"glider":  Glider,
	"blinker": Blinker,
	"block":   Block,
}

// PatternByName looks up a built-in pattern.
func PatternByName(name string) (Pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPattern, "[PatternByName] %q", name)
	}
	return p, nil
}

// PatternNames lists the built-in pattern names in sorted order.
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stamp writes the pattern with its top-left corner at (startRow, startCol).
// Parts of the pattern falling outside the grid are clipped; the anchor itself
// must lie on the grid.
func (g *Grid) Stamp(startRow, startCol int, p Pattern) error {
	if !g.InBounds(startRow, startCol) {
		return errors.Wrapf(ErrOutOfBounds, "[Stamp] anchor (%d,%d) in %dx%d grid", startRow, startCol, g.rows, g.cols)
	}
	for dr, row := range p {
		for dc, cell := range row {
			r, c := startRow+dr, startCol+dc
			if g.InBounds(r, c) {
				g.cells[r][c] = cell
			}
		}
	}
	return nil
}
