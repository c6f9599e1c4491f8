package cli

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"gridsearch/astar"
	"gridsearch/config"
	"gridsearch/grid_world"
)

// parsePoint reads "x,y".
func parsePoint(s string) (*config.PointConfig, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("%q is not x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return nil, fmt.Errorf("%q is not x,y: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return nil, fmt.Errorf("%q is not x,y: %w", s, err)
	}
	return &config.PointConfig{X: x, Y: y}, nil
}

// newRand seeds from the config, or from the clock when the seed is 0. The seed is
// logged so that a random run can be repeated.
func newRand(cfg *config.AppConfig, logger *slog.Logger) (*rand.Rand, int64) {
	seed := cfg.Grid.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Debug("random source", "seed", seed)
	return rand.New(rand.NewSource(seed)), seed
}

// loadGrid reads the configured grid file or generates a random grid.
func loadGrid(cfg *config.AppConfig, rng *rand.Rand) (*grid_world.CostGrid, error) {
	if cfg.Grid.File != "" {
		f, err := os.Open(cfg.Grid.File)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open grid", err)
		}
		defer f.Close()

		grid, err := grid_world.Parse(f)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to parse grid "+cfg.Grid.File, err)
		}
		return grid, nil
	}

	grid, err := grid_world.Generate(cfg.Grid.GenParams(), rng)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid grid parameters", err)
	}
	return grid, nil
}

// validatePoint rejects coordinates outside the grid before they reach the engine.
func validatePoint(grid *grid_world.CostGrid, name string, p grid_world.Point) error {
	if !grid.InBounds(p.X, p.Y) {
		return NewExitError(ExitCommandError, fmt.Sprintf(
			"%s %v is outside the %dx%d grid: x must be within [0,%d] and y within [0,%d]",
			name, p, grid.Width(), grid.Height(), grid.Width()-1, grid.Height()-1))
	}
	return nil
}

// resolveEndpoints validates the configured start and goal, drawing random walkable
// cells for those left unset. Generated grids have both endpoints carved out as
// walkable; cells of a grid file are kept as written, so a walled goal yields no path.
func resolveEndpoints(
	cfg *config.AppConfig,
	grid *grid_world.CostGrid,
	rng *rand.Rand,
) (start, goal grid_world.Point, err error) {
	pick := func(name string, configured *config.PointConfig) (grid_world.Point, error) {
		if configured != nil {
			p := configured.Point()
			return p, validatePoint(grid, name, p)
		}
		if cfg.Grid.File == "" {
			return grid_world.RandomPoint(grid, rng), nil
		}
		p, ok := grid_world.RandomWalkable(grid, rng)
		if !ok {
			return p, NewExitError(ExitCommandError, "grid has no walkable cell for the "+name)
		}
		return p, nil
	}

	if start, err = pick("start", cfg.Search.Start); err != nil {
		return
	}
	if goal, err = pick("goal", cfg.Search.Goal); err != nil {
		return
	}
	if cfg.Grid.File == "" {
		grid.Clear(start)
		grid.Clear(goal)
	}
	return
}

func closedPolicy(cfg *config.AppConfig) (astar.ClosedPolicy, error) {
	policy, err := astar.ParseClosedPolicy(cfg.Search.ClosedPolicy)
	if err != nil {
		return policy, WrapExitError(ExitCommandError, "invalid closed policy", err)
	}
	return policy, nil
}

// outcomeError maps a finished search onto the process exit status.
func outcomeError(result astar.Result) error {
	switch result.Outcome {
	case astar.NotFound:
		return NewExitError(ExitFailure, "no path found")
	case astar.Cancelled:
		return NewExitError(ExitFailure, "search cancelled")
	}
	return nil
}
