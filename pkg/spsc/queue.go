// Package spsc provides an unbounded single-producer/single-consumer FIFO
// queue built from linked fixed-size chunks.
//
// Exactly one goroutine may call Offer at a time, and exactly one goroutine
// may call Peek, Poll, or Clear at a time. The producer and consumer sides
// may run concurrently with each other; element publication is the only
// synchronization point, so no locks are taken on either path.
//
// The consumer role may migrate between goroutines as long as the handoff
// itself is synchronized by the caller (FlowKit operators hand it off
// through their drain-worker gate).
//
// Discard is the one exception to the single-consumer rule: any goroutine
// may call it at any time to mark the queue permanently empty, without
// coordinating with either side.
package spsc

import (
	"sync/atomic"
)

// DefaultChunkSize is the chunk capacity used when no hint is given.
const DefaultChunkSize = 16

// chunk is one fixed-size segment of the queue. Slots are published with
// atomic pointer stores; a nil slot has not been produced yet.
type chunk[T any] struct {
	slots []atomic.Pointer[T]
	next  atomic.Pointer[chunk[T]]
}

func newChunk[T any](size int) *chunk[T] {
	return &chunk[T]{slots: make([]atomic.Pointer[T], size)}
}

// Queue is an unbounded SPSC FIFO. The zero value is not usable; construct
// with New.
type Queue[T any] struct {
	chunkSize int
	size      atomic.Int64
	dead      atomic.Bool

	// Producer-side state, touched only by the producing goroutine.
	producer    *chunk[T]
	producerIdx int

	// Consumer-side state, touched only by the consuming goroutine.
	consumer    *chunk[T]
	consumerIdx int
}

// New creates a queue. capacityHint sizes the chunks; it tunes allocation
// behavior only and never bounds the queue. Hints are rounded up to a power
// of two.
func New[T any](capacityHint int) *Queue[T] {
	size := roundToPowerOfTwo(capacityHint)
	first := newChunk[T](size)
	return &Queue[T]{
		chunkSize: size,
		producer:  first,
		consumer:  first,
	}
}

// Offer appends v at the tail. Producer-side. Dropped silently once the
// queue is discarded.
func (q *Queue[T]) Offer(v T) {
	if q.dead.Load() {
		return
	}
	c := q.producer
	if q.producerIdx == q.chunkSize {
		next := newChunk[T](q.chunkSize)
		c.next.Store(next)
		q.producer = next
		q.producerIdx = 0
		c = next
	}
	c.slots[q.producerIdx].Store(&v)
	q.producerIdx++
	q.size.Add(1)
}

// Peek returns the head element without removing it. Consumer-side.
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if q.dead.Load() {
		return zero, false
	}
	c, ok := q.consumerChunk()
	if !ok {
		return zero, false
	}
	p := c.slots[q.consumerIdx].Load()
	if p == nil {
		return zero, false
	}
	return *p, true
}

// Poll removes and returns the head element. Consumer-side.
func (q *Queue[T]) Poll() (T, bool) {
	var zero T
	if q.dead.Load() {
		return zero, false
	}
	c, ok := q.consumerChunk()
	if !ok {
		return zero, false
	}
	slot := &c.slots[q.consumerIdx]
	p := slot.Load()
	if p == nil {
		return zero, false
	}
	slot.Store(nil) // release for GC
	q.consumerIdx++
	q.size.Add(-1)
	return *p, true
}

// consumerChunk returns the chunk holding the current head, advancing past
// an exhausted chunk if the producer has linked its successor.
func (q *Queue[T]) consumerChunk() (*chunk[T], bool) {
	c := q.consumer
	if q.consumerIdx == q.chunkSize {
		next := c.next.Load()
		if next == nil {
			return nil, false
		}
		q.consumer = next
		q.consumerIdx = 0
		c = next
	}
	return c, true
}

// IsEmpty reports whether the queue currently holds no elements.
func (q *Queue[T]) IsEmpty() bool {
	return q.dead.Load() || q.size.Load() == 0
}

// Size returns the current number of elements. The value is exact when the
// queue is quiescent and a snapshot otherwise.
func (q *Queue[T]) Size() int {
	if q.dead.Load() {
		return 0
	}
	return int(q.size.Load())
}

// Clear removes all elements, releasing them for GC. Consumer-side.
func (q *Queue[T]) Clear() {
	for {
		if _, ok := q.Poll(); !ok {
			return
		}
	}
}

// Discard marks the queue permanently empty. Unlike Clear it may be called
// from any goroutine while both sides are active: it only sets a latch, so
// elements already stored are released when the queue itself becomes
// unreachable rather than eagerly.
func (q *Queue[T]) Discard() {
	q.dead.Store(true)
}

// roundToPowerOfTwo returns the smallest power of two >= n, with a floor of
// DefaultChunkSize for non-positive or tiny hints.
func roundToPowerOfTwo(n int) int {
	if n < 2 {
		return DefaultChunkSize
	}
	size := 2
	for size < n {
		size <<= 1
	}
	return size
}
