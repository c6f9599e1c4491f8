package astar

import (
	"fmt"

	"gridsearch/grid_world"
)

// Outcome is the terminal variant of a search.
type Outcome int

const (
	// NotFound means the frontier emptied before the goal was reached. This is an
	// expected result, not an error.
	NotFound Outcome = iota
	// Found means Result.Path holds a minimum-cost path.
	Found
	// Cancelled means the caller's context ended the search early.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not-found"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Path is an ordered sequence of coordinates from start to goal inclusive.
type Path []grid_world.Point

// Cost sums the cost of entering each cell after the first.
func (path Path) Cost(grid *grid_world.CostGrid) (total int) {
	for i := 1; i < len(path); i++ {
		total += grid.CostOf(path[i].X, path[i].Y)
	}
	return
}

// Result contains the outcome of a search.
type Result struct {
	Outcome Outcome
	// Path and Cost are only set when Outcome is Found.
	Path Path
	Cost int
	// Expanded counts the cells that were closed.
	Expanded int
}

func (r Result) String() string {
	if r.Outcome == Found {
		return fmt.Sprintf("%s: cost %d, %d cells, %d expanded", r.Outcome, r.Cost, len(r.Path), r.Expanded)
	}
	return fmt.Sprintf("%s: %d expanded", r.Outcome, r.Expanded)
}
