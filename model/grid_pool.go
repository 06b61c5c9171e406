package model

import "sync"

// GridPool recycles grids between generations.
// A grid must not be used by anyone else after it is Put.
type GridPool struct {
	pool sync.Pool
}

func NewGridPool() *GridPool {
	return &GridPool{
		pool: sync.Pool{
			New: func() interface{} {
				return &Grid{}
			},
		},
	}
}

// Get retrieves an all-dead grid from the pool with the given dimensions.
// rows and cols must be positive.
func (p *GridPool) Get(rows, cols int) *Grid {
	g := p.pool.Get().(*Grid)
	g.reset(rows, cols)
	return g
}

// Put returns a grid to the pool
func (p *GridPool) Put(g *Grid) {
	if g == nil {
		return
	}
	p.pool.Put(g)
}

// reset resizes the grid to new dimensions and kills every cell
func (g *Grid) reset(rows, cols int) {
	if len(g.cells) != rows {
		g.cells = make([][]bool, rows)
	}
	for i := range g.cells {
		if len(g.cells[i]) != cols {
			g.cells[i] = make([]bool, cols)
		} else {
			clear(g.cells[i])
		}
	}
	g.rows = rows
	g.cols = cols
}
