// cell_views contains views derived from the Board view-model.
package cell_views

import (
	"fmt"

	"gridsearch/astar"
	"gridsearch/models"
)

// Cell is a grid cell reduced to what the svg needs. As a rule of thumb, Cell fields
// should be immediately usable as view parameters.
type Cell struct {
	X, Y int
	Fill string
	// Label is the traversal cost, blank for walls and unit cost cells.
	Label string
}

// Stats are the counters shown beside the grid.
type Stats struct {
	Step    string
	Open    string
	Closed  string
	G       string
	Message string
}

// Board is the view-model for a single search frame. Cells are indexed [x][y], and
// y grows downward just as in the console rendering, which matches the svg axes.
type Board struct {
	Cells [][]Cell
	Stats Stats
}

// Convert transforms a search frame into a Board for consumption by the views.
func Convert(frame models.Frame) Board {
	cells := make([][]Cell, frame.Width())
	for x := range frame.Marks {
		cells[x] = make([]Cell, frame.Height())
		for y, mark := range frame.Marks[x] {
			cells[x][y] = Cell{
				X:     x,
				Y:     y,
				Fill:  getFill(mark, frame.Done),
				Label: getLabel(mark, frame.Costs[x][y]),
			}
		}
	}

	return Board{
		Cells: cells,
		Stats: Stats{
			Step:    fmt.Sprintf("%d", frame.Step),
			Open:    fmt.Sprintf("%d", frame.Open),
			Closed:  fmt.Sprintf("%d", frame.Closed),
			G:       fmt.Sprintf("%d", frame.G),
			Message: getMessage(frame),
		},
	}
}

// The final path is drawn in a distinct color from the in-progress best path.
func getFill(mark models.Mark, done bool) (fill string) {
	switch mark {
	case models.Empty:
		fill = "white"
	case models.Wall:
		fill = "dimgray"
	case models.Reached:
		fill = "lightsalmon"
	case models.Settled:
		fill = "lightpink"
	case models.Path:
		fill = "lightgreen"
		if done {
			fill = "gold"
		}
	case models.Start:
		fill = "lightblue"
	case models.Goal:
		fill = "lightyellow"
	}
	return
}

func getLabel(mark models.Mark, cost int) string {
	if mark == models.Wall || cost == 1 {
		return ""
	}
	return fmt.Sprintf("%d", cost)
}

func getMessage(frame models.Frame) string {
	if !frame.Done {
		return "searching"
	}
	switch frame.Result.Outcome {
	case astar.Found:
		return fmt.Sprintf("Path found: cost %d", frame.Result.Cost)
	case astar.Cancelled:
		return "Search cancelled"
	}
	return "No path found"
}
