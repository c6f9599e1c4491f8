package astar

import (
	"math"

	"gridsearch/grid_world"
)

// unreached is the g-cost sentinel for cells no path has reached yet.
const unreached = math.MaxInt

// noParent marks the start cell, and any cell not yet reached.
const noParent = -1

// node is the per-cell bookkeeping of one search. Nodes live in an arena indexed by
// y*width+x; parents are arena indices rather than pointers, so a search's state is a
// single flat allocation that is dropped when the search is.
type node struct {
	g, h      int
	parent    int
	seq       int // admission order, the last frontier tie-break
	heapIndex int // position in the frontier heap, or -1 when not open
	admitted  bool
	closed    bool
}

func (n *node) f() int {
	return n.g + n.h
}

func (n *node) isOpen() bool {
	return n.heapIndex >= 0
}

// arena is the SearchState of one invocation.
type arena struct {
	width int
	nodes []node
}

func newArena(grid *grid_world.CostGrid) *arena {
	nodes := make([]node, grid.Width()*grid.Height())
	for i := range nodes {
		nodes[i] = node{g: unreached, parent: noParent, heapIndex: -1}
	}
	return &arena{width: grid.Width(), nodes: nodes}
}

func (a *arena) index(p grid_world.Point) int {
	return p.Y*a.width + p.X
}

func (a *arena) point(idx int) grid_world.Point {
	return grid_world.Point{X: idx % a.width, Y: idx / a.width}
}

func (a *arena) at(idx int) *node {
	return &a.nodes[idx]
}

// reconstruct walks parent links from idx back to the start and returns the path
// start->idx inclusive. A cell that no path has reached yields nil.
func (a *arena) reconstruct(idx int) Path {
	if a.nodes[idx].g == unreached {
		return nil
	}

	path := Path{}
	for cur := idx; cur != noParent; cur = a.nodes[cur].parent {
		path = append(path, a.point(cur))
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
