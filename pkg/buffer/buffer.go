// Package buffer provides a bounded, thread-safe FIFO buffer with a
// configurable overflow policy.
package buffer

// Buffer is a bounded FIFO queue.
type Buffer[T any] interface {
	// Write adds item, applying the overflow policy when full.
	Write(item T)

	// Read removes and returns the oldest item.
	Read() (T, bool)

	// Snapshot returns the buffered items, oldest first, without removing them.
	Snapshot() []T

	Size() int
	Capacity() int

	// Dropped counts items discarded by the overflow policy.
	Dropped() int64
}

// OverflowPolicy defines how the buffer behaves when it reaches capacity.
type OverflowPolicy int

const (
	// DropOldest removes the oldest item to make room for new items.
	DropOldest OverflowPolicy = iota

	// DropNewest drops new items when the buffer is full.
	DropNewest
)

// String returns a human-readable representation of the overflow policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "DropOldest"
	case DropNewest:
		return "DropNewest"
	default:
		return "Unknown"
	}
}

// NewCircularBuffer creates a buffer holding at most capacity items.
// capacity below one is raised to one.
func NewCircularBuffer[T any](capacity int, policy OverflowPolicy) Buffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &circularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		policy:   policy,
	}
}
