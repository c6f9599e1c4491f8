package grid_world

import (
	"errors"
	"fmt"
	"math/rand"
)

// GenParams describes a random grid. Each cell is walkable with probability
// WalkableProbability, and walkable cells draw a cost uniformly from [MinCost, MaxCost].
type GenParams struct {
	Width, Height       int
	WalkableProbability float64
	MinCost, MaxCost    int
}

// ConsoleParams mirrors the console demo: a 25x25 grid, mostly open, unit costs.
var ConsoleParams = GenParams{
	Width:               25,
	Height:              25,
	WalkableProbability: 0.9,
	MinCost:             1,
	MaxCost:             1,
}

// ErrBadProbability is returned when the walkable probability is outside [0,1].
var ErrBadProbability = errors.New("walkable probability must be within [0,1]")

// Validate checks the parameters before generation.
func (params GenParams) Validate() error {
	if params.Width <= 0 || params.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadDimensions, params.Width, params.Height)
	}
	if params.WalkableProbability < 0 || params.WalkableProbability > 1 {
		return fmt.Errorf("%w: %v", ErrBadProbability, params.WalkableProbability)
	}
	if params.MinCost < 0 || params.MaxCost < params.MinCost {
		return fmt.Errorf("%w: cost range [%d,%d]", ErrNegativeCost, params.MinCost, params.MaxCost)
	}
	return nil
}

// Generate builds a random grid from params using rng. The same rng seed always
// yields the same grid.
func Generate(params GenParams, rng *rand.Rand) (*CostGrid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	grid, err := New(params.Width, params.Height, Cell{})
	if err != nil {
		return nil, err
	}

	costSpan := params.MaxCost - params.MinCost + 1
	for x := 0; x < params.Width; x++ {
		for y := 0; y < params.Height; y++ {
			// Both draws are taken for every cell so that the walkable layout of a seed
			// does not shift when only the cost range changes.
			walkable := rng.Float64() < params.WalkableProbability
			cost := params.MinCost + rng.Intn(costSpan)
			if walkable {
				grid.cells[x][y] = Cell{Walkable: true, Cost: cost}
			}
		}
	}
	return grid, nil
}

// RandomPoint returns a uniformly drawn in-bounds coordinate.
func RandomPoint(g *CostGrid, rng *rand.Rand) Point {
	return Point{X: rng.Intn(g.width), Y: rng.Intn(g.height)}
}

// RandomWalkable draws walkable coordinates; ok is false when the grid has none.
func RandomWalkable(g *CostGrid, rng *rand.Rand) (p Point, ok bool) {
	walkable := g.WalkablePoints()
	if len(walkable) == 0 {
		return Point{}, false
	}
	return walkable[rng.Intn(len(walkable))], true
}
