package buffer

import (
	"sync"
	"sync/atomic"
)

type circularBuffer[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	size     int
	head     int // next write position
	tail     int // next read position
	policy   OverflowPolicy
	dropped  atomic.Int64
}

func (cb *circularBuffer[T]) Write(item T) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.size == cb.capacity {
		cb.dropped.Add(1)
		if cb.policy == DropNewest {
			return
		}
		var zero T
		cb.items[cb.tail] = zero
		cb.tail = (cb.tail + 1) % cb.capacity
		cb.size--
	}

	cb.items[cb.head] = item
	cb.head = (cb.head + 1) % cb.capacity
	cb.size++
}

func (cb *circularBuffer[T]) Read() (T, bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	var zero T
	if cb.size == 0 {
		return zero, false
	}
	item := cb.items[cb.tail]
	cb.items[cb.tail] = zero
	cb.tail = (cb.tail + 1) % cb.capacity
	cb.size--
	return item, true
}

func (cb *circularBuffer[T]) Snapshot() []T {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	out := make([]T, cb.size)
	for i := range out {
		out[i] = cb.items[(cb.tail+i)%cb.capacity]
	}
	return out
}

func (cb *circularBuffer[T]) Size() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.size
}

func (cb *circularBuffer[T]) Capacity() int {
	return cb.capacity
}

func (cb *circularBuffer[T]) Dropped() int64 {
	return cb.dropped.Load()
}
