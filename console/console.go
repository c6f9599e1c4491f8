// console renders a running search as text frames: the console reskin of the search.
// Each progress event redraws the whole grid with the cells reached so far and the
// current best path, optionally clearing the screen and pausing between frames.
package console

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"gridsearch/astar"
	"gridsearch/grid_world"
)

// Frame symbols, in addition to the grid's own '#' and '.'.
const (
	TRAVERSED = 't'
	PATH      = 'x'
	GOAL      = 'G'
)

const (
	clearScreen = "\033[H\033[2J"
	resetColor  = "\033[0m"
)

var colors = map[byte]string{
	GOAL:      "\033[33m", // yellow
	PATH:      "\033[32m", // green
	TRAVERSED: "\033[31m", // red
}

// Renderer is an astar.Observer that prints a frame per progress event.
type Renderer struct {
	w         io.Writer
	grid      *grid_world.CostGrid
	goal      grid_world.Point
	traversed [][]bool
	delay     time.Duration
	clear     bool
	color     bool
	frames    int
	err       error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDelay pauses after every frame, so a person can follow the search.
func WithDelay(delay time.Duration) Option {
	return func(r *Renderer) { r.delay = delay }
}

// WithClear clears the terminal before every frame.
func WithClear() Option {
	return func(r *Renderer) { r.clear = true }
}

// WithColor colors the goal, path and traversed cells with ANSI escapes.
func WithColor() Option {
	return func(r *Renderer) { r.color = true }
}

// NewRenderer returns a renderer for a search over grid toward goal.
func NewRenderer(
	w io.Writer,
	grid *grid_world.CostGrid,
	goal grid_world.Point,
	options ...Option,
) *Renderer {
	traversed := make([][]bool, grid.Width())
	for x := range traversed {
		traversed[x] = make([]bool, grid.Height())
	}

	r := &Renderer{w: w, grid: grid, goal: goal, traversed: traversed}
	for _, option := range options {
		option(r)
	}
	return r
}

// OnProgress marks the improved cell as traversed and draws the path to it.
func (r *Renderer) OnProgress(p astar.Progress) {
	r.traversed[p.Cell.X][p.Cell.Y] = true
	r.draw(p.Path)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
}

// Final draws the result of the search: the found path, or the traversed cells
// followed by a notice that no path exists.
func (r *Renderer) Final(result astar.Result) error {
	switch result.Outcome {
	case astar.Found:
		r.draw(result.Path)
		r.printf("Path found: cost %d, %d steps, %d cells expanded\n", result.Cost, len(result.Path)-1, result.Expanded)
	case astar.NotFound:
		r.draw(nil)
		r.printf("No path found\n")
	case astar.Cancelled:
		r.printf("Search cancelled after %d cells expanded\n", result.Expanded)
	}
	return r.err
}

// Frames counts the frames drawn so far.
func (r *Renderer) Frames() int {
	return r.frames
}

// Err returns the first write error, if any. Observers cannot return errors, so the
// renderer stops drawing after the first failure and reports it here.
func (r *Renderer) Err() error {
	return r.err
}

func (r *Renderer) draw(path astar.Path) {
	if r.err != nil {
		return
	}
	r.frames++

	display := r.symbols(path)
	bw := bufio.NewWriter(r.w)
	if r.clear {
		bw.WriteString(clearScreen)
	}
	fmt.Fprintf(bw, "Goal coordinates are %d:%d\n", r.goal.X, r.goal.Y)
	for y := 0; y < r.grid.Height(); y++ {
		for x := 0; x < r.grid.Width(); x++ {
			sym := display[x][y]
			if code, ok := colors[sym]; ok && r.color {
				fmt.Fprintf(bw, "%s%c %s", code, sym, resetColor)
				continue
			}
			fmt.Fprintf(bw, "%c ", sym)
		}
		bw.WriteByte('\n')
	}
	r.err = bw.Flush()
}

// symbols layers the frame: grid, then traversed cells, then the path and goal.
func (r *Renderer) symbols(path astar.Path) [][]byte {
	display := make([][]byte, r.grid.Width())
	for x := range display {
		display[x] = make([]byte, r.grid.Height())
		for y := range display[x] {
			display[x][y] = grid_world.WALKABLE
			if !r.grid.IsWalkable(x, y) {
				display[x][y] = grid_world.WALL
			}
			if r.traversed[x][y] {
				display[x][y] = TRAVERSED
			}
		}
	}

	if path != nil {
		for _, p := range path {
			display[p.X][p.Y] = PATH
		}
		display[r.goal.X][r.goal.Y] = GOAL
	}
	return display
}

func (r *Renderer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}
