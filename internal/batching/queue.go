// Package batching: the pending request queue between the gateway and the
// dispatcher. Producers never block; the single dispatcher drains in FIFO
// order and sleeps on the wake channel when the queue is empty.
package batching

import (
	"sync"
	"time"
)

// PendingEntry is a request awaiting batch assembly. Created by the gateway,
// consumed exactly once by the dispatcher and never mutated.
type PendingEntry struct {
	RequestID  string
	Prompt     Prompt
	EnqueuedAt time.Time
}

// Queue is an unbounded FIFO of pending entries shared by many producers and
// a single consumer.
//
// Enqueue never blocks and never rejects. TryDrainUpTo never blocks and
// returns an empty slice when nothing is pending. The consumer waits for new
// work on Wake instead of polling.
type Queue struct {
	mu      sync.Mutex
	entries []PendingEntry

	// wake holds at most one token. A token left behind by an Enqueue that
	// raced with a drain only costs the consumer one extra empty drain.
	wake chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Enqueue appends entry to the tail of the queue and wakes the consumer.
func (q *Queue) Enqueue(entry PendingEntry) {
	q.mu.Lock()
	q.entries = append(q.entries, entry)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// TryDrainUpTo removes and returns up to n of the earliest entries in FIFO
// order. Returns nil when the queue is empty or n <= 0.
func (q *Queue) TryDrainUpTo(n int) []PendingEntry {
	if n <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	k := min(n, len(q.entries))
	if k == 0 {
		return nil
	}

	batch := make([]PendingEntry, k)
	copy(batch, q.entries[:k])

	// Drop references so drained prompts can be collected.
	clear(q.entries[:k])
	q.entries = q.entries[k:]
	if len(q.entries) == 0 {
		q.entries = nil
	}

	return batch
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Wake returns the channel that receives a token after an Enqueue.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}
