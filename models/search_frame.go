package models

import (
	"context"
	"sync"
	"time"

	"gridsearch/astar"
	"gridsearch/grid_world"
)

// Mark classifies a cell for display. Later marks take precedence when layering.
type Mark int

const (
	Empty Mark = iota
	Wall
	// Reached cells have been improved by the search at least once.
	Reached
	// Settled cells have been expanded.
	Settled
	Path
	Start
	Goal
)

// Frame is a snapshot of a running search: the layered marks of every cell, indexed
// [x][y] like the grid, plus the counters shown beside it.
type Frame struct {
	Marks [][]Mark
	Costs [][]int
	Step  int
	G     int
	Open  int
	// Closed counts the settled cells.
	Closed int
	Done   bool
	// Result is only meaningful when Done is set.
	Result astar.Result
}

// Width is the number of columns of the frame.
func (f Frame) Width() int {
	return len(f.Marks)
}

// Height is the number of rows of the frame.
func (f Frame) Height() int {
	if len(f.Marks) == 0 {
		return 0
	}
	return len(f.Marks[0])
}

// Tracker is an astar.Observer that turns progress events into frames and sends them
// to a channel, pausing for a step delay after each one so a viewer can follow along.
// The send blocks until the frame is consumed or ctx is done.
type Tracker struct {
	ctx    context.Context
	frames chan<- Frame
	delay  time.Duration

	mu      sync.Mutex
	base    [][]Mark
	costs   [][]int
	reached [][]bool
	settled [][]bool
	latest  Frame
	start   grid_world.Point
	goal    grid_world.Point
}

// NewTracker prepares a tracker for a search over grid from start to goal.
func NewTracker(
	ctx context.Context,
	grid *grid_world.CostGrid,
	start grid_world.Point,
	goal grid_world.Point,
	frames chan<- Frame,
	delay time.Duration,
) *Tracker {
	w, h := grid.Width(), grid.Height()
	tr := &Tracker{
		ctx:     ctx,
		frames:  frames,
		delay:   delay,
		base:    make([][]Mark, w),
		costs:   make([][]int, w),
		reached: make([][]bool, w),
		settled: make([][]bool, w),
		start:   start,
		goal:    goal,
	}
	grid.Visit(func(p grid_world.Point, cell grid_world.Cell) {
		if tr.base[p.X] == nil {
			tr.base[p.X] = make([]Mark, h)
			tr.costs[p.X] = make([]int, h)
			tr.reached[p.X] = make([]bool, h)
			tr.settled[p.X] = make([]bool, h)
		}
		if !cell.Walkable {
			tr.base[p.X][p.Y] = Wall
		}
		tr.costs[p.X][p.Y] = cell.Cost
	})
	tr.latest = tr.snapshot(nil)
	return tr
}

// OnProgress records the improved and expanded cells and publishes a frame drawing
// the current best path to the improved cell.
func (tr *Tracker) OnProgress(p astar.Progress) {
	tr.mu.Lock()
	tr.reached[p.Cell.X][p.Cell.Y] = true
	tr.settled[p.Expanded.X][p.Expanded.Y] = true
	frame := tr.snapshot(p.Path)
	frame.Step = p.Step
	frame.G = p.G
	frame.Open = p.Open
	frame.Closed = p.Closed
	tr.latest = frame
	tr.mu.Unlock()

	tr.publish(frame)
}

// Finish publishes the final frame: the found path, or the explored area alone.
func (tr *Tracker) Finish(result astar.Result) {
	tr.mu.Lock()
	frame := tr.snapshot(result.Path)
	frame.Step = tr.latest.Step
	frame.Open = tr.latest.Open
	frame.Closed = tr.latest.Closed
	frame.G = result.Cost
	frame.Done = true
	frame.Result = result
	tr.latest = frame
	tr.mu.Unlock()

	tr.publish(frame)
}

// Latest returns the most recent frame, so late viewers start from the current state.
func (tr *Tracker) Latest() Frame {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.latest
}

func (tr *Tracker) publish(frame Frame) {
	select {
	case tr.frames <- frame:
	case <-tr.ctx.Done():
		return
	}
	if tr.delay > 0 {
		select {
		case <-time.After(tr.delay):
		case <-tr.ctx.Done():
		}
	}
}

// snapshot layers base marks, reached and settled cells, the path, then the endpoints.
// Callers hold mu.
func (tr *Tracker) snapshot(path astar.Path) Frame {
	marks := make([][]Mark, len(tr.base))
	for x := range tr.base {
		marks[x] = make([]Mark, len(tr.base[x]))
		for y, mark := range tr.base[x] {
			if tr.reached[x][y] {
				mark = Reached
			}
			if tr.settled[x][y] {
				mark = Settled
			}
			marks[x][y] = mark
		}
	}
	for _, p := range path {
		marks[p.X][p.Y] = Path
	}
	marks[tr.start.X][tr.start.Y] = Start
	marks[tr.goal.X][tr.goal.Y] = Goal
	return Frame{Marks: marks, Costs: tr.costs}
}
