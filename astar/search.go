package astar

import (
	"context"
	"fmt"

	"gridsearch/grid_world"
)

// Status is the state of a Search.
type Status int

const (
	StatusRunning Status = iota
	StatusSucceeded
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ClosedPolicy decides what happens when a cheaper path reaches a cell that was already closed.
type ClosedPolicy int

const (
	// ClosedFinal never reconsiders a closed cell. With the Manhattan heuristic over
	// non-negative costs this still returns optimal paths whenever every cost is at least 1.
	ClosedFinal ClosedPolicy = iota
	// ReopenClosed moves a closed cell back into the frontier when a strictly cheaper
	// path to it is found. This stays optimal when zero-cost cells make the heuristic
	// inconsistent.
	ReopenClosed
)

func (p ClosedPolicy) String() string {
	if p == ReopenClosed {
		return "reopen"
	}
	return "final"
}

// ParseClosedPolicy converts "final" or "reopen" into a ClosedPolicy.
func ParseClosedPolicy(s string) (ClosedPolicy, error) {
	switch s {
	case "", "final":
		return ClosedFinal, nil
	case "reopen":
		return ReopenClosed, nil
	}
	return ClosedFinal, fmt.Errorf("unknown closed policy %q: must be final or reopen", s)
}

// Options defines parameters for the search.
type Options struct {
	Observer     Observer
	ClosedPolicy ClosedPolicy
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithObserver registers an observer for progress events.
func WithObserver(observer Observer) Option {
	return func(options *Options) {
		if observer != nil {
			options.Observer = observer
		}
	}
}

// WithClosedPolicy selects the closed set policy.
func WithClosedPolicy(policy ClosedPolicy) Option {
	return func(options *Options) { options.ClosedPolicy = policy }
}

// Neighbor enumeration order: +y, +x, -y, -x. Tie-break outcomes depend on it.
var (
	dx = [4]int{0, 1, 0, -1}
	dy = [4]int{1, 0, -1, 0}
)

// Search is one A* invocation over a grid. It owns its state exclusively; create one
// per search. A Search is not safe for concurrent use, though many Searches may share
// one grid.
type Search struct {
	grid        *grid_world.CostGrid
	start, goal grid_world.Point
	options     Options

	arena    *arena
	open     *frontier
	status   Status
	current  grid_world.Point
	steps    int
	expanded int
	closed   int
	result   Result
}

// NewSearch prepares a search from start to goal. Start and goal must be in bounds;
// violating that is a programming error and panics. Walkability is not validated:
// an unwalkable goal simply ends in NotFound.
func NewSearch(
	grid *grid_world.CostGrid,
	start grid_world.Point,
	goal grid_world.Point,
	options ...Option,
) *Search {
	if grid == nil {
		panic("astar: nil grid")
	}
	if !grid.InBounds(start.X, start.Y) {
		panic(fmt.Sprintf("astar: start %v out of bounds", start))
	}
	if !grid.InBounds(goal.X, goal.Y) {
		panic(fmt.Sprintf("astar: goal %v out of bounds", goal))
	}

	searchOptions := Options{
		Observer:     NopObserver{},
		ClosedPolicy: ClosedFinal,
	}
	for _, option := range options {
		option(&searchOptions)
	}

	a := newArena(grid)
	s := &Search{
		grid:    grid,
		start:   start,
		goal:    goal,
		options: searchOptions,
		arena:   a,
		open:    newFrontier(a),
		status:  StatusRunning,
		current: start,
	}
	s.open.insertOrImprove(a.index(start), 0, grid_world.Manhattan(start, goal), noParent)
	return s
}

// FindPath runs A* from start to goal to completion. Cancellation of ctx is checked
// before every expansion.
func FindPath(
	ctx context.Context,
	grid *grid_world.CostGrid,
	start grid_world.Point,
	goal grid_world.Point,
	options ...Option,
) Result {
	search := NewSearch(grid, start, goal, options...)
	for search.Step(ctx) == StatusRunning {
	}
	result, _ := search.Result()
	return result
}

// Step performs one iteration of the search loop and returns the resulting status.
// Calling Step on a finished search is a no-op.
func (s *Search) Step(ctx context.Context) Status {
	if s.status != StatusRunning {
		return s.status
	}
	if ctx.Err() != nil {
		return s.finish(StatusCancelled, Result{Outcome: Cancelled})
	}
	if s.open.isEmpty() {
		return s.finish(StatusFailed, Result{Outcome: NotFound})
	}

	idx := s.open.popBest()
	s.current = s.arena.point(idx)
	s.steps++

	if s.current == s.goal {
		cur := s.arena.at(idx)
		return s.finish(StatusSucceeded, Result{
			Outcome: Found,
			Path:    s.arena.reconstruct(idx),
			Cost:    cur.g,
		})
	}

	cur := s.arena.at(idx)
	cur.closed = true
	s.closed++
	s.expanded++

	for i := range dx {
		nx, ny := s.current.X+dx[i], s.current.Y+dy[i]
		if !s.grid.InBounds(nx, ny) || !s.grid.IsWalkable(nx, ny) {
			continue
		}

		neighborIdx := s.arena.index(grid_world.Point{X: nx, Y: ny})
		neighbor := s.arena.at(neighborIdx)
		tentativeG := cur.g + s.grid.CostOf(nx, ny)

		if neighbor.closed {
			if s.options.ClosedPolicy == ClosedFinal || tentativeG >= neighbor.g {
				continue
			}
			s.closed--
		} else if tentativeG >= neighbor.g && s.open.contains(neighborIdx) {
			continue
		}

		h := grid_world.Manhattan(grid_world.Point{X: nx, Y: ny}, s.goal)
		if s.open.insertOrImprove(neighborIdx, tentativeG, h, idx) {
			s.emit(neighborIdx)
		}
	}
	return s.status
}

func (s *Search) emit(idx int) {
	s.options.Observer.OnProgress(Progress{
		Step:     s.steps,
		Cell:     s.arena.point(idx),
		Expanded: s.current,
		Path:     s.arena.reconstruct(idx),
		G:        s.arena.at(idx).g,
		Closed:   s.closed,
		Open:     s.open.Len(),
	})
}

func (s *Search) finish(status Status, result Result) Status {
	s.status = status
	result.Expanded = s.expanded
	s.result = result
	return status
}

// Result returns the search result; done is false while the search is still running.
func (s *Search) Result() (result Result, done bool) {
	return s.result, s.status != StatusRunning
}

// Status returns the current state of the search.
func (s *Search) Status() Status { return s.status }

// Current returns the cell most recently taken from the frontier.
func (s *Search) Current() grid_world.Point { return s.current }

// Start returns the start cell.
func (s *Search) Start() grid_world.Point { return s.start }

// Goal returns the goal cell.
func (s *Search) Goal() grid_world.Point { return s.goal }

// Steps counts the cells taken from the frontier so far, the goal included.
func (s *Search) Steps() int { return s.steps }

// Open returns the cells currently in the frontier, in row-major order.
func (s *Search) Open() []grid_world.Point {
	return s.collect(func(n *node) bool { return n.isOpen() })
}

// Closed returns the settled cells, in row-major order.
func (s *Search) Closed() []grid_world.Point {
	return s.collect(func(n *node) bool { return n.closed })
}

// BestPathTo returns the current best path from start to p, or nil if p is unreached.
func (s *Search) BestPathTo(p grid_world.Point) Path {
	if !s.grid.InBounds(p.X, p.Y) {
		panic(fmt.Sprintf("astar: %v out of bounds", p))
	}
	return s.arena.reconstruct(s.arena.index(p))
}

func (s *Search) collect(pred func(*node) bool) (points []grid_world.Point) {
	for i := range s.arena.nodes {
		if pred(&s.arena.nodes[i]) {
			points = append(points, s.arena.point(i))
		}
	}
	return
}
