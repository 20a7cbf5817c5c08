package takelast

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/c360/flowkit/errors"
	"github.com/c360/flowkit/flow"
	"github.com/c360/flowkit/pkg/clock"
	"github.com/c360/flowkit/pkg/spsc"
)

// entry is one buffered item with the clock tick it arrived at. Timestamp
// and value travel through the queue as one unit, so they cannot
// desynchronize.
type entry[T any] struct {
	ts  int64
	val T
}

// terminalState is published exactly once when upstream terminates. A nil
// err means normal completion. Readers load the whole state through one
// atomic pointer, so an error is never observed "half set".
type terminalState struct {
	err error
}

// subscriber sits between upstream and one downstream consumer. Upstream
// signals arrive serialized per the flow contract; Request and Cancel arrive
// from arbitrary goroutines. All downstream delivery funnels through the
// wip-gated drain worker, so the downstream consumer is never called from
// two goroutines at once.
type subscriber[T any] struct {
	actual flow.Subscriber[T]

	count      int64 // retained-count cap, 0 = uncapped
	window     int64 // trailing window in clock units, 0 = uncapped
	unit       time.Duration
	delayError bool

	clk     clock.Clock
	logger  *slog.Logger
	metrics *operatorMetrics
	id      string

	queue    *spsc.Queue[entry[T]]
	upstream flow.Subscription

	requested flow.Demand

	// wip is the drain-worker gate: whoever moves it 0→1 owns the drain
	// worker until it counts back down to zero.
	wip       atomic.Int32
	cancelled atomic.Bool
	terminal  atomic.Pointer[terminalState]
}

func newSubscriber[T any](actual flow.Subscriber[T], cfg Config, opts *operatorOptions, metrics *operatorMetrics) *subscriber[T] {
	return &subscriber[T]{
		actual:     actual,
		count:      max(cfg.Count, 0),
		window:     cfg.windowTicks(),
		unit:       cfg.Unit,
		delayError: cfg.DelayError,
		clk:        opts.clk,
		logger:     opts.logger,
		metrics:    metrics,
		id:         uuid.NewString(),
		queue:      spsc.New[entry[T]](cfg.CapacityHint),
	}
}

// OnSubscribe implements flow.Subscriber. The operator asks upstream for
// everything immediately; backpressure is downstream-facing only.
func (s *subscriber[T]) OnSubscribe(up flow.Subscription) {
	if err := flow.ValidateSubscription(s.upstream, up); err != nil {
		s.logger.Warn("takelast: rejected subscription",
			"subscription_id", s.id, "error", err)
		return
	}
	s.upstream = up

	s.logger.Debug("takelast: subscribed", "subscription_id", s.id)

	s.actual.OnSubscribe(s)
	up.Request(flow.Unbounded)
}

// OnNext implements flow.Subscriber. Appends the item at the current clock
// tick, trims the buffer back to the window, and nudges the drain worker.
func (s *subscriber[T]) OnNext(v T) {
	now := s.clk.Now(s.unit)
	s.queue.Offer(entry[T]{ts: now, val: v})
	if s.metrics != nil {
		s.metrics.recordAppend(s.queue.Size())
	}
	s.trim(now)
	s.drain()
}

// OnError implements flow.Subscriber. In delay-error mode the buffer is
// trimmed once more against the terminal time, since its contents will
// still be delivered.
func (s *subscriber[T]) OnError(err error) {
	if s.delayError {
		s.trim(s.clk.Now(s.unit))
	}
	s.terminal.CompareAndSwap(nil, &terminalState{err: err})
	s.drain()
}

// OnComplete implements flow.Subscriber.
func (s *subscriber[T]) OnComplete() {
	s.trim(s.clk.Now(s.unit))
	s.terminal.CompareAndSwap(nil, &terminalState{})
	s.drain()
}

// trim evicts from the head while the oldest retained item falls outside
// the age window or the retained count strictly exceeds the cap. Eviction
// is oldest-first only; the buffer is never reordered.
func (s *subscriber[T]) trim(now int64) {
	for {
		head, ok := s.queue.Peek()
		if !ok {
			return
		}
		expired := s.window > 0 && head.ts < now-s.window
		over := s.count > 0 && int64(s.queue.Size()) > s.count
		if !expired && !over {
			return
		}
		s.queue.Poll()
		if s.metrics != nil {
			s.metrics.recordTrim(s.queue.Size())
		}
	}
}

// Request implements flow.Subscription. Safe from any goroutine.
func (s *subscriber[T]) Request(n int64) {
	if err := flow.ValidateRequest(n); err != nil {
		s.logger.Warn("takelast: invalid request",
			"subscription_id", s.id, "n", n, "error", err)
		return
	}
	s.requested.Add(n)
	s.drain()
}

// Cancel implements flow.Subscription. Idempotent and safe from any
// goroutine. Cleanup (clear the buffer, cancel upstream) runs exactly once:
// here when the caller wins the drain-worker gate, otherwise in the active
// worker's next pass.
func (s *subscriber[T]) Cancel() {
	if !s.cancelled.CompareAndSwap(false, true) {
		return
	}

	s.logger.Debug("takelast: cancelled", "subscription_id", s.id)

	if s.wip.Add(1) == 1 {
		s.clearBuffer()
		if s.upstream != nil {
			s.upstream.Cancel()
		}
	}
}

// clearBuffer releases retained items during cleanup. Physically draining
// the queue is only safe once upstream has published its terminal signal;
// before that the producer may still be appending and trimming, so the
// queue is tombstoned instead.
func (s *subscriber[T]) clearBuffer() {
	if s.terminal.Load() != nil {
		s.queue.Clear()
	} else {
		s.queue.Discard()
	}
	if s.metrics != nil {
		s.metrics.recordClear()
	}
}

// drain is the many-trigger/one-worker gate. Every trigger increments wip;
// the caller that moves it off zero runs drain passes until the counter
// says no new work arrived meanwhile. A pass that reports the subscription
// finished parks the gate nonzero so no caller ever becomes the worker
// again.
func (s *subscriber[T]) drain() {
	if s.wip.Add(1) != 1 {
		return
	}

	missed := int32(1)
	for {
		if s.drainPass() {
			return
		}
		missed = s.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

// drainPass runs one delivery pass and reports whether the subscription
// finished. Emission only happens after the terminal signal: which items
// are the last ones is unknowable before upstream finishes.
func (s *subscriber[T]) drainPass() bool {
	if s.terminal.Load() == nil {
		if s.cancelled.Load() {
			return s.checkTerminated(s.queue.IsEmpty())
		}
		return false
	}

	if s.checkTerminated(s.queue.IsEmpty()) {
		return true
	}

	r, unbounded := s.requested.Value()
	var emitted int64

	for {
		_, ok := s.queue.Peek()
		if s.checkTerminated(!ok) {
			return true
		}
		if !ok || (!unbounded && r == 0) {
			break
		}

		popped, polled := s.queue.Poll()
		if !polled {
			// The peeked head vanished with no concurrent consumer.
			// The buffer contract is broken; this subscription cannot
			// continue.
			err := errors.WrapFatal(errors.ErrQueueDesync, "takelast", "drain", "pop")
			s.logger.Error("takelast: buffer desync",
				"subscription_id", s.id, "error", err)
			s.upstream.Cancel()
			s.actual.OnError(err)
			return true
		}

		s.actual.OnNext(popped.val)
		if !unbounded {
			r--
		}
		emitted++
	}

	if emitted > 0 {
		s.requested.Produce(emitted)
		if s.metrics != nil {
			s.metrics.recordEmit(emitted, s.queue.Size())
		}
	}
	return false
}

// checkTerminated decides whether the subscription is finished given the
// buffer's observed emptiness, delivering the terminal signal when it is.
// Exactly one terminal signal ever reaches downstream, and none after
// cancellation.
func (s *subscriber[T]) checkTerminated(empty bool) bool {
	if s.cancelled.Load() {
		s.clearBuffer()
		s.upstream.Cancel()
		return true
	}

	term := s.terminal.Load()

	if s.delayError {
		if empty && term != nil {
			if term.err != nil {
				s.actual.OnError(term.err)
			} else {
				s.actual.OnComplete()
			}
			return true
		}
		return false
	}

	if term != nil && term.err != nil {
		s.queue.Clear()
		if s.metrics != nil {
			s.metrics.recordClear()
		}
		s.actual.OnError(term.err)
		return true
	}
	if empty && term != nil {
		s.actual.OnComplete()
		return true
	}
	return false
}
