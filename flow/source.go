package flow

import (
	"sync/atomic"
)

// FromSlice returns a Publisher that emits the elements of items in order,
// honoring downstream demand, then completes. Each Subscribe call gets an
// independent cursor over the same backing slice; the slice must not be
// mutated while subscriptions are live.
func FromSlice[T any](items []T) Publisher[T] {
	return &slicePublisher[T]{items: items}
}

type slicePublisher[T any] struct {
	items []T
}

// Subscribe implements Publisher.
func (p *slicePublisher[T]) Subscribe(sub Subscriber[T]) {
	if sub == nil {
		return
	}
	s := &sliceSubscription[T]{actual: sub, items: p.items}
	sub.OnSubscribe(s)
}

// sliceSubscription emits one slice to one Subscriber. Emission is
// serialized through the same trigger-counter gate operators use, so
// reentrant or concurrent Request calls never overlap deliveries.
type sliceSubscription[T any] struct {
	actual Subscriber[T]
	items  []T
	index  int // touched only by the active drain worker

	demand    Demand
	wip       atomic.Int32
	cancelled atomic.Bool
}

// Request implements Subscription.
func (s *sliceSubscription[T]) Request(n int64) {
	if ValidateRequest(n) != nil {
		return
	}
	s.demand.Add(n)
	s.drain()
}

// Cancel implements Subscription.
func (s *sliceSubscription[T]) Cancel() {
	s.cancelled.Store(true)
}

func (s *sliceSubscription[T]) drain() {
	if s.wip.Add(1) != 1 {
		return
	}

	missed := int32(1)
	for {
		r, unbounded := s.demand.Value()
		var emitted int64

		for unbounded || emitted < r {
			if s.cancelled.Load() {
				return
			}
			if s.index == len(s.items) {
				s.actual.OnComplete()
				return
			}
			s.actual.OnNext(s.items[s.index])
			s.index++
			emitted++
		}

		if s.cancelled.Load() {
			return
		}
		if s.index == len(s.items) {
			s.actual.OnComplete()
			return
		}
		s.demand.Produce(emitted)

		missed = s.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}
