package workers

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// AddFloat64 atomically adds delta to *val using a compare-and-swap loop
// over the float's bit pattern, the way the teacher's
// simulation/atomic_helpers.go does it. The physics kernels never need this
// (every kernel writes disjoint per-particle slots, per spec.md §5); it
// backs the concurrent sum/sum-of-squares reduction in
// telemetry.parallelMeanStdDev, where multiple workers fold into the same
// scalar.
func AddFloat64(val *float64, delta float64) {
	for {
		old := atomic.LoadUint64((*uint64)(unsafe.Pointer(val)))
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64((*uint64)(unsafe.Pointer(val)), old, next) {
			return
		}
	}
}
