package astar

import "gridsearch/grid_world"

// Progress is emitted each time a cell's best known path improves.
type Progress struct {
	// Step is the 1-based number of the expansion that produced this event.
	Step int
	// Cell is the cell whose state improved.
	Cell grid_world.Point
	// Expanded is the cell being expanded, which was closed during this step. Renderers
	// accumulate these to track the closed set incrementally.
	Expanded grid_world.Point
	// Path is the current best path from the start to Cell, inclusive. It is a fresh
	// slice owned by the receiver.
	Path Path
	// G is the cost of Path.
	G int
	// Closed and Open are the closed set and frontier sizes after the update.
	Closed, Open int
}

// Observer receives progress synchronously from the search loop. OnProgress blocks the
// search, so observers that pace or publish must do so knowingly.
type Observer interface {
	OnProgress(Progress)
}

// ObserverFunc adapts a func to an Observer.
type ObserverFunc func(Progress)

func (fn ObserverFunc) OnProgress(p Progress) {
	fn(p)
}

// NopObserver discards progress. It is the default.
type NopObserver struct{}

func (NopObserver) OnProgress(Progress) {}

// Observers fans progress out to several observers, in order.
func Observers(observers ...Observer) Observer {
	return ObserverFunc(func(p Progress) {
		for _, o := range observers {
			o.OnProgress(p)
		}
	})
}
