// Package clock provides the time source FlowKit operators stamp items with.
//
// Operators never read time.Now directly; they take a Clock so tests can
// drive time explicitly. Timestamps are int64 values quantized to a
// caller-chosen unit (typically time.Millisecond), which keeps window
// arithmetic in plain integer comparisons.
//
// Zero Value Semantics:
//   - A unit of 0 or less is treated as time.Millisecond
//
// Usage Examples:
//
//	// Real time in milliseconds
//	now := clock.SystemClock.Now(time.Millisecond)
//
//	// Deterministic time in tests
//	c := clock.NewManual(0)
//	c.Advance(500)
package clock

import (
	"sync/atomic"
	"time"
)

// Clock is a source of "now" quantized to a fixed unit.
type Clock interface {
	// Now returns the current time as an integer count of unit.
	// A unit of 0 or less is treated as time.Millisecond.
	Now(unit time.Duration) int64
}

// SystemClock is the default Clock, backed by time.Now.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now(unit time.Duration) int64 {
	if unit <= 0 {
		unit = time.Millisecond
	}
	return time.Now().UnixNano() / int64(unit)
}

// Manual is a Clock whose time only moves when told to. It is safe for
// concurrent use, so tests can advance time from one goroutine while an
// operator stamps items from another.
type Manual struct {
	now atomic.Int64
}

// NewManual creates a Manual clock starting at the given tick count.
func NewManual(start int64) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

// Now returns the current tick count. The unit is ignored; Manual ticks are
// whatever unit the test chooses to think in.
func (m *Manual) Now(_ time.Duration) int64 {
	return m.now.Load()
}

// Set moves the clock to an absolute tick count.
func (m *Manual) Set(now int64) {
	m.now.Store(now)
}

// Advance moves the clock forward by d ticks and returns the new time.
func (m *Manual) Advance(d int64) int64 {
	return m.now.Add(d)
}
