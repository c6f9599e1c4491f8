package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 shared by many writers without a lock. The batch runner
// uses it to accumulate path costs and expansion counts from concurrent searches.
// The zero value is ready to use and holds 0.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 returns an AtomicFloat64 holding val.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// Read returns the current value.
func (af *AtomicFloat64) Read() float64 {
	return math.Float64frombits(af.bits.Load())
}

// TryAdd attempts a single compare-and-swap of the value plus addend. If another writer
// changed the value in between, nothing is written and succeeded is false, leaving the
// caller to retry, recalculate or drop the update.
func (af *AtomicFloat64) TryAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

// Add adds addend, retrying until no other writer interferes, and returns the sum.
func (af *AtomicFloat64) Add(addend float64) float64 {
	for {
		if newVal, ok := af.TryAdd(addend); ok {
			return newVal
		}
	}
}

// Set stores val unconditionally.
func (af *AtomicFloat64) Set(val float64) {
	af.bits.Store(math.Float64bits(val))
}
