package flow

import (
	"sync/atomic"
)

// Demand tracks outstanding downstream demand for one subscription.
//
// The unbounded state is a latched tag, not a reserved counter value: once a
// subscription goes unbounded (an Unbounded request, or finite requests
// saturating), the finite counter is ignored and no arithmetic touches it
// again. All mutation is lock-free and safe from any goroutine.
//
// The zero value is ready to use with zero outstanding demand.
type Demand struct {
	unbounded atomic.Bool
	n         atomic.Int64
}

// Add merges a request of n into the outstanding demand. Requesting
// Unbounded, or overflowing the finite counter, latches the unbounded state
// permanently. Non-positive n is ignored; validate with ValidateRequest
// before calling.
func (d *Demand) Add(n int64) {
	if n <= 0 || d.unbounded.Load() {
		return
	}
	if n == Unbounded {
		d.unbounded.Store(true)
		return
	}
	for {
		cur := d.n.Load()
		next := cur + n
		if next < cur {
			// Saturated; finite accounting is over.
			d.unbounded.Store(true)
			return
		}
		if d.n.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Value returns the outstanding demand. When unbounded is true, n is
// meaningless and the caller may emit freely.
func (d *Demand) Value() (n int64, unbounded bool) {
	if d.unbounded.Load() {
		return 0, true
	}
	return d.n.Load(), false
}

// Produce records that n items were emitted, consuming that much demand.
// A no-op in the unbounded state. The counter never goes negative.
func (d *Demand) Produce(n int64) {
	if n <= 0 || d.unbounded.Load() {
		return
	}
	for {
		cur := d.n.Load()
		next := cur - n
		if next < 0 {
			next = 0
		}
		if d.n.CompareAndSwap(cur, next) {
			return
		}
	}
}
