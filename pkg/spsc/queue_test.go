package spsc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := New[int](4)

	require.True(t, q.IsEmpty())
	_, ok := q.Peek()
	require.False(t, ok)
	_, ok = q.Poll()
	require.False(t, ok)

	for i := 0; i < 10; i++ {
		q.Offer(i)
	}
	assert.Equal(t, 10, q.Size())

	for i := 0; i < 10; i++ {
		head, ok := q.Peek()
		require.True(t, ok)
		assert.Equal(t, i, head, "peek should see the oldest element")

		v, ok := q.Poll()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}

	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Size())
}

func TestQueueCrossesChunkBoundaries(t *testing.T) {
	// Chunk size 2 forces a chunk transition every other element.
	q := New[string](2)

	values := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, v := range values {
		q.Offer(v)
	}

	for _, want := range values {
		got, ok := q.Poll()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueueInterleavedOfferPoll(t *testing.T) {
	q := New[int](4)

	next := 0
	expect := 0
	for round := 0; round < 50; round++ {
		for i := 0; i < 3; i++ {
			q.Offer(next)
			next++
		}
		for i := 0; i < 2; i++ {
			v, ok := q.Poll()
			require.True(t, ok)
			require.Equal(t, expect, v)
			expect++
		}
	}

	for !q.IsEmpty() {
		v, ok := q.Poll()
		require.True(t, ok)
		require.Equal(t, expect, v)
		expect++
	}
	assert.Equal(t, next, expect, "every offered element polled exactly once")
}

func TestQueueClear(t *testing.T) {
	q := New[int](4)
	for i := 0; i < 9; i++ {
		q.Offer(i)
	}

	q.Clear()
	assert.True(t, q.IsEmpty())

	// Queue is still usable after Clear.
	q.Offer(42)
	v, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestQueueDiscard(t *testing.T) {
	q := New[int](4)
	for i := 0; i < 5; i++ {
		q.Offer(i)
	}

	q.Discard()

	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Size())

	_, ok := q.Peek()
	assert.False(t, ok)
	_, ok = q.Poll()
	assert.False(t, ok)

	// Offers after discard are dropped.
	q.Offer(99)
	assert.True(t, q.IsEmpty())
}

func TestQueueDiscardDuringProduce(t *testing.T) {
	q := New[int](8)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			q.Offer(i)
		}
	}()
	go func() {
		defer wg.Done()
		q.Discard()
	}()

	wg.Wait()
	assert.True(t, q.IsEmpty())
}

func TestQueueConcurrentProducerConsumer(t *testing.T) {
	const total = 100000
	q := New[int](64)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			q.Offer(i)
		}
	}()

	received := make([]int, 0, total)
	go func() {
		defer wg.Done()
		for len(received) < total {
			if v, ok := q.Poll(); ok {
				received = append(received, v)
			}
		}
	}()

	wg.Wait()

	require.Len(t, received, total)
	for i, v := range received {
		require.Equal(t, i, v, "elements must arrive in offer order")
	}
	assert.True(t, q.IsEmpty())
}

func TestRoundToPowerOfTwo(t *testing.T) {
	tests := []struct {
		hint     int
		expected int
	}{
		{-1, DefaultChunkSize},
		{0, DefaultChunkSize},
		{1, DefaultChunkSize},
		{2, 2},
		{3, 4},
		{16, 16},
		{17, 32},
		{1000, 1024},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, roundToPowerOfTwo(tt.hint), "hint %d", tt.hint)
	}
}
