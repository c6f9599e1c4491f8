package astar

import "container/heap"

// frontier is the open set: a binary heap of arena indices ordered by f-cost, then
// h-cost, then admission order. The admission order tie-break makes the selection
// identical to scanning an insertion-ordered open list for the first strictly smaller
// (f, h) pair, hence equal-cost alternatives always resolve the same way.
type frontier struct {
	arena   *arena
	items   []int
	nextSeq int
}

func newFrontier(a *arena) *frontier {
	fr := &frontier{arena: a}
	heap.Init(fr)
	return fr
}

func (fr *frontier) Len() int { return len(fr.items) }

func (fr *frontier) Less(i, j int) bool {
	a, b := fr.arena.at(fr.items[i]), fr.arena.at(fr.items[j])
	if a.f() != b.f() {
		return a.f() < b.f()
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (fr *frontier) Swap(i, j int) {
	fr.items[i], fr.items[j] = fr.items[j], fr.items[i]
	fr.arena.at(fr.items[i]).heapIndex = i
	fr.arena.at(fr.items[j]).heapIndex = j
}

func (fr *frontier) Push(x any) {
	idx := x.(int)
	fr.arena.at(idx).heapIndex = len(fr.items)
	fr.items = append(fr.items, idx)
}

func (fr *frontier) Pop() any {
	old := fr.items
	n := len(old)
	idx := old[n-1]
	fr.items = old[:n-1]
	fr.arena.at(idx).heapIndex = -1
	return idx
}

func (fr *frontier) isEmpty() bool {
	return len(fr.items) == 0
}

func (fr *frontier) contains(idx int) bool {
	return fr.arena.at(idx).isOpen()
}

// insertOrImprove records (g, h, parent) for idx and admits it to the frontier when it
// was not open, or re-orders it when it was open and g is strictly lower than its
// current g. It reports whether anything changed.
func (fr *frontier) insertOrImprove(idx, g, h, parent int) bool {
	n := fr.arena.at(idx)
	if n.isOpen() {
		if g >= n.g {
			return false
		}
		n.g, n.h, n.parent = g, h, parent
		heap.Fix(fr, n.heapIndex)
		return true
	}

	n.g, n.h, n.parent = g, h, parent
	n.admitted = true
	n.closed = false
	n.seq = fr.nextSeq
	fr.nextSeq++
	heap.Push(fr, idx)
	return true
}

// popBest removes and returns the open cell with the lowest (f, h, admission) key.
func (fr *frontier) popBest() int {
	return heap.Pop(fr).(int)
}
