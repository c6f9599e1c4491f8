// Package astar finds minimum-cost paths over a grid_world.CostGrid using A* with a
// Manhattan heuristic on a 4-connected neighborhood.
//
// It exposes two entry points:
//
//   - FindPath: run the search to completion and get a Result.
//   - Search: advance the search one expansion at a time, to drive UIs or debugging tools.
//
// Progress is reported synchronously to an injected Observer each time a cell's best
// known path improves, so that a console, a browser view, or a test harness can watch the
// search without the engine knowing about any of them. The engine has no internal
// goroutines, locks, or delays; every search owns its state and may run concurrently with
// other searches over the same grid.
package astar
