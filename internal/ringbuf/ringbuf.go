// Package ringbuf is a bounded single-producer single-consumer queue. Push
// and Pop never block or allocate, so the consumer side is safe to use from
// the audio thread.
package ringbuf

import "sync/atomic"

type ring[T any] struct {
	buf  []T
	mask uint64
	head atomic.Uint64 // next slot to read, written by the consumer
	_    [56]byte
	tail atomic.Uint64 // next slot to write, written by the producer
}

// Producer is the write half. Only one goroutine may use it at a time.
type Producer[T any] struct{ r *ring[T] }

// Consumer is the read half. Only one goroutine may use it at a time.
type Consumer[T any] struct{ r *ring[T] }

// New creates a queue holding at least capacity items (rounded up to a power
// of two) and returns its two halves.
func New[T any](capacity int) (*Producer[T], *Consumer[T]) {
	size := 1
	for size < capacity {
		size <<= 1
	}
	r := &ring[T]{buf: make([]T, size), mask: uint64(size - 1)}
	return &Producer[T]{r: r}, &Consumer[T]{r: r}
}

// Push appends v, returning false if the queue is full.
func (p *Producer[T]) Push(v T) bool {
	r := p.r
	tail := r.tail.Load()
	if tail-r.head.Load() == uint64(len(r.buf)) {
		return false
	}
	r.buf[tail&r.mask] = v
	r.tail.Store(tail + 1)
	return true
}

func (p *Producer[T]) Len() int { return p.r.len() }

func (p *Producer[T]) Cap() int { return len(p.r.buf) }

// Pop removes the oldest item.
func (c *Consumer[T]) Pop() (T, bool) {
	r := c.r
	head := r.head.Load()
	if head == r.tail.Load() {
		var zero T
		return zero, false
	}
	slot := &r.buf[head&r.mask]
	v := *slot
	var zero T
	*slot = zero
	r.head.Store(head + 1)
	return v, true
}

func (c *Consumer[T]) Len() int { return c.r.len() }

func (r *ring[T]) len() int { return int(r.tail.Load() - r.head.Load()) }
