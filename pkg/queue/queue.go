// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package queue provides the bounded FIFO that decouples OPC UA ingest from
// WebSocket egress.
//
// Queue is a single process-wide shared instance: many Producer goroutines
// enqueue, many Consumer goroutines dequeue, and both sides block rather than
// fail when the queue is empty or full. This is the sole backpressure
// mechanism in the pipeline — there is no per-tag flow control and no
// unbounded buffering.
package queue

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Queue is a bounded, blocking, multi-producer multi-consumer FIFO of opaque
// byte records.
//
// Enqueue blocks while the queue is at capacity; Dequeue blocks while the
// queue is empty. Ordering is strict FIFO across all producers combined:
// there is no per-producer fairness guarantee beyond "first enqueued, first
// dequeued". Produced/consumed counters are atomic and may be read (and
// reset) without holding the internal lock.
type Queue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	items    *list.List
	capacity int

	produced atomic.Int64
	consumed atomic.Int64
}

// New creates a Queue with the given capacity. Capacity must be positive.
func New(capacity int) *Queue {
	if capacity <= 0 {
		panic("queue: capacity must be positive")
	}

	q := &Queue{
		items:    list.New(),
		capacity: capacity,
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)

	return q
}

// Enqueue appends record to the tail of the queue, blocking while the queue
// is at capacity. It never fails; shutdown is not modeled.
func (q *Queue) Enqueue(record []byte) {
	q.mu.Lock()
	for q.items.Len() == q.capacity {
		q.notFull.Wait()
	}
	q.items.PushBack(record)
	q.produced.Add(1)
	q.mu.Unlock()

	q.notEmpty.Signal()
}

// Dequeue pops and returns the head of the queue, blocking while the queue is
// empty.
func (q *Queue) Dequeue() []byte {
	q.mu.Lock()
	for q.items.Len() == 0 {
		q.notEmpty.Wait()
	}
	front := q.items.Remove(q.items.Front()).([]byte)
	q.mu.Unlock()

	q.consumed.Add(1)
	q.notFull.Signal()

	return front
}

// Len returns the current number of records held in the queue.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Capacity returns the queue's fixed capacity.
func (q *Queue) Capacity() int {
	return q.capacity
}

// SnapshotAndResetCounters atomically reads and zeroes the produced/consumed
// counters, for use by the periodic metrics tick.
func (q *Queue) SnapshotAndResetCounters() (produced, consumed int64) {
	produced = q.produced.Swap(0)
	consumed = q.consumed.Swap(0)
	return produced, consumed
}

// Produced returns the running total of enqueued records without resetting it.
func (q *Queue) Produced() int64 { return q.produced.Load() }

// Consumed returns the running total of dequeued records without resetting it.
func (q *Queue) Consumed() int64 { return q.consumed.Load() }
