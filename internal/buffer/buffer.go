// Package buffer implements the bounded in-memory event buffer between
// ingestion and the partitioned columnar writer (spec §4.5).
package buffer

import (
	"sync"

	"github.com/mallardmetrics/mallard/internal/events"
)

// Buffer is a thread-safe, insertion-ordered sequence of events.
type Buffer struct {
	mu   sync.Mutex
	data []events.Event
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Push appends e and returns the buffer's length after the append.
func (b *Buffer) Push(e events.Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, e)
	return len(b.data)
}

// Len returns the buffer's current, advisory length.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Drain atomically removes and returns every buffered event, in insertion
// order. It is the sole mutator holding the lock for its duration; callers
// must treat a non-nil drain result as fully owned.
func (b *Buffer) Drain() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return nil
	}
	drained := b.data
	b.data = nil
	return drained
}
