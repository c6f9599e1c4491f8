// Package batch runs many independent searches concurrently over one shared grid.
// Each worker owns its searches and its random source; the grid is only read.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"gridsearch/astar"
	"gridsearch/atomic_float"
	"gridsearch/grid_world"
)

var (
	ErrNoWorkers  = errors.New("batch needs at least one worker")
	ErrNoWalkable = errors.New("grid has no walkable cell")
)

// Record is one finished search.
type Record struct {
	Worker  int
	Start   grid_world.Point
	Goal    grid_world.Point
	Result  astar.Result
	Elapsed time.Duration
}

// Sink receives every record on a single goroutine. Returning an error stops the batch.
type Sink func(context.Context, Record) error

// ProgressFunc is called after each record reaches the sink with the running count.
// It is synchronous and should complete quickly.
type ProgressFunc func(ctx context.Context, completed int)

// Params describes a batch.
type Params struct {
	Workers  int
	Searches int
	// Seed makes the start/goal pairs reproducible: worker i draws from Seed+i.
	Seed         int64
	ClosedPolicy astar.ClosedPolicy
	Progress     ProgressFunc
	Logger       *slog.Logger
}

// Summary aggregates the searches that ran.
type Summary struct {
	Searches  int
	Found     int
	NotFound  int
	Cancelled int
	// MeanCost is averaged over found paths only.
	MeanCost     float64
	MeanExpanded float64
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"%d searches: %d found, %d not found, %d cancelled, mean cost %.2f, mean expanded %.2f",
		s.Searches, s.Found, s.NotFound, s.Cancelled, s.MeanCost, s.MeanExpanded)
}

// stats is shared by all workers.
type stats struct {
	outcomes      [3]atomic.Int64
	totalCost     atomic_float.AtomicFloat64
	totalExpanded atomic_float.AtomicFloat64
}

func (st *stats) add(result astar.Result) {
	st.outcomes[result.Outcome].Add(1)
	st.totalExpanded.Add(float64(result.Expanded))
	if result.Outcome == astar.Found {
		st.totalCost.Add(float64(result.Cost))
	}
}

func (st *stats) summary() Summary {
	summary := Summary{
		Found:     int(st.outcomes[astar.Found].Load()),
		NotFound:  int(st.outcomes[astar.NotFound].Load()),
		Cancelled: int(st.outcomes[astar.Cancelled].Load()),
	}
	summary.Searches = summary.Found + summary.NotFound + summary.Cancelled
	if summary.Found > 0 {
		summary.MeanCost = st.totalCost.Read() / float64(summary.Found)
	}
	if summary.Searches > 0 {
		summary.MeanExpanded = st.totalExpanded.Read() / float64(summary.Searches)
	}
	return summary
}

// Run executes params.Searches searches between random walkable cells of grid, spread
// over params.Workers goroutines, and delivers each record to sink (which may be nil).
// On cancellation or a sink error it returns the summary of the searches that ran.
func Run(
	ctx context.Context,
	grid *grid_world.CostGrid,
	params Params,
	sink Sink,
) (Summary, error) {
	if params.Workers < 1 {
		return Summary{}, ErrNoWorkers
	}
	if len(grid.WalkablePoints()) == 0 {
		return Summary{}, ErrNoWalkable
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	st := &stats{}
	group, groupCtx := errgroup.WithContext(ctx)

	// deploy workers; each one takes every Workers-th search
	workers := []<-chan Record{}
	for i := 0; i < params.Workers; i++ {
		quota := params.Searches / params.Workers
		if i < params.Searches%params.Workers {
			quota++
		}
		records := make(chan Record)
		workers = append(workers, records)

		worker := i
		group.Go(func() error {
			defer close(records)
			return runWorker(groupCtx, grid, worker, quota, params, st, records)
		})
	}

	// Fan in the workers so that the sink is only ever called from one goroutine.
	merged := channerics.Merge(groupCtx.Done(), workers...)
	group.Go(func() error {
		completed := 0
		for record := range merged {
			if sink != nil {
				if err := sink(groupCtx, record); err != nil {
					return fmt.Errorf("batch sink: %w", err)
				}
			}
			completed++
			if params.Progress != nil {
				params.Progress(groupCtx, completed)
			}
		}
		return nil
	})

	err := group.Wait()
	if err == nil {
		err = ctx.Err()
	}
	summary := st.summary()
	logger.Info("batch finished",
		"workers", params.Workers,
		"searches", summary.Searches,
		"found", summary.Found,
		"err", err)
	return summary, err
}

func runWorker(
	ctx context.Context,
	grid *grid_world.CostGrid,
	worker int,
	quota int,
	params Params,
	st *stats,
	records chan<- Record,
) error {
	rng := rand.New(rand.NewSource(params.Seed + int64(worker)))
	for n := 0; n < quota; n++ {
		// done-guard
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		start, _ := grid_world.RandomWalkable(grid, rng)
		goal, _ := grid_world.RandomWalkable(grid, rng)
		begin := time.Now()
		result := astar.FindPath(ctx, grid, start, goal, astar.WithClosedPolicy(params.ClosedPolicy))
		st.add(result)

		select {
		case records <- Record{
			Worker:  worker,
			Start:   start,
			Goal:    goal,
			Result:  result,
			Elapsed: time.Since(begin),
		}:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
