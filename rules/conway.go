package rules

import "github.com/sheikhrachel/go-gol/model"

/*
ApplyConwayRules applies Conway's Game of Life rules (B3/S23) to determine the next state of a cell.

A living cell survives with 2 or 3 neighbors; a dead cell is born with exactly 3.
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	if alive {
		return neighbors == 2 || neighbors == 3
	}
	return neighbors == 3
}

// CountNeighbors counts living cells in the Moore neighborhood of (r, c).
// Positions off the grid are skipped; the grid does not wrap.
func CountNeighbors(g *model.Grid, r, c int) int {
	count := 0

	minR := max(0, r-1)
	maxR := min(g.Rows()-1, r+1)
	minC := max(0, c-1)
	maxC := min(g.Cols()-1, c+1)

	for nr := minR; nr <= maxR; nr++ {
		for nc := minC; nc <= maxC; nc++ {
			if nr == r && nc == c {
				continue // Skip the cell itself
			}
			if g.Alive(nr, nc) {
				count++
			}
		}
	}

	return count
}

// NextGeneration returns the successor of g as a new grid of the same size.
// g is not modified.
func NextGeneration(g *model.Grid) *model.Grid {
	return NextGenerationPooled(g, nil)
}

// NextGenerationPooled is NextGeneration taking the result grid from pool
// when pool is non-nil.
func NextGenerationPooled(g *model.Grid, pool *model.GridPool) *model.Grid {
	var next *model.Grid
	if pool != nil {
		next = pool.Get(g.Rows(), g.Cols())
	} else {
		// g has valid dimensions, so NewGrid cannot fail here.
		next, _ = model.NewGrid(g.Rows(), g.Cols())
	}
	for r := range g.Rows() {
		for c := range g.Cols() {
			if ApplyConwayRules(CountNeighbors(g, r, c), g.Alive(r, c)) {
				_ = next.Set(r, c, true)
			}
		}
	}
	return next
}
