/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package player

import (
	"sync"
	"sync/atomic"
)

// Queue is an unbounded FIFO of actions with many producers and a single
// consumer. Push never blocks.
type Queue struct {
	mu    sync.Mutex
	items []Action
	head  int

	pending atomic.Int64
	ready   chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends a to the tail and wakes the consumer.
func (q *Queue) Push(a Action) {
	q.mu.Lock()
	q.items = append(q.items, a)
	q.pending.Add(1)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryPop removes the head action. Consumer only.
func (q *Queue) TryPop() (Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return nil, false
	}
	a := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	q.pending.Add(-1)
	return a, true
}

// Pending reports whether an action is waiting, without locking.
func (q *Queue) Pending() bool {
	return q.pending.Load() > 0
}

// Len is the number of waiting actions.
func (q *Queue) Len() int {
	return int(q.pending.Load())
}

// Ready receives a value after a Push. A receive does not guarantee an item
// is still queued.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}
