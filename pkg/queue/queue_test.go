// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := New(3)

	q.Enqueue([]byte("R1"))
	q.Enqueue([]byte("R2"))
	q.Enqueue([]byte("R3"))

	require.Equal(t, 3, q.Len())
	assert.Equal(t, []byte("R1"), q.Dequeue())
	assert.Equal(t, []byte("R2"), q.Dequeue())
	assert.Equal(t, []byte("R3"), q.Dequeue())
	assert.Equal(t, 0, q.Len())
}

// TestQueueBound exercises scenario 1 from the spec: capacity 3, records
// enqueued and drained at a sustainable pace never exceed the bound.
func TestQueueBound(t *testing.T) {
	q := New(3)
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for i := 0; i < 6; i++ {
			q.Enqueue([]byte{byte('A' + i)})
			assert.LessOrEqual(t, q.Len(), q.Capacity())
		}
	}()

	got := make([]byte, 0, 6)
	for i := 0; i < 6; i++ {
		b := q.Dequeue()
		got = append(got, b[0])
		assert.GreaterOrEqual(t, q.Len(), 0)
	}

	wg.Wait()
	assert.Equal(t, []byte("ABCDEF"), got)
}

// TestFullQueueBackpressure exercises scenario 2: capacity 2, consumer paused,
// 5 enqueues attempted; calls 3..5 must block until the consumer resumes.
func TestFullQueueBackpressure(t *testing.T) {
	q := New(2)
	done := make(chan struct{})

	go func() {
		for i := 0; i < 5; i++ {
			q.Enqueue([]byte{byte('0' + i)})
		}
		close(done)
	}()

	// Give the producer time to fill the queue and block on the third enqueue.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, q.Len(), "queue should be full and producer blocked")

	select {
	case <-done:
		t.Fatal("enqueue goroutine should still be blocked")
	default:
	}

	results := make([]byte, 0, 5)
	for i := 0; i < 5; i++ {
		b := q.Dequeue()
		results = append(results, b[0])
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer did not unblock after draining")
	}

	assert.Equal(t, []byte("01234"), results)
}

// TestConservation checks produced == consumed + size at quiescent points.
func TestConservation(t *testing.T) {
	q := New(10)

	for i := 0; i < 7; i++ {
		q.Enqueue([]byte{byte(i)})
	}
	for i := 0; i < 4; i++ {
		q.Dequeue()
	}

	assert.Equal(t, q.Produced(), q.Consumed()+int64(q.Len()))
}

func TestSnapshotAndResetCounters(t *testing.T) {
	q := New(10)
	q.Enqueue([]byte("x"))
	q.Enqueue([]byte("y"))
	q.Dequeue()

	produced, consumed := q.SnapshotAndResetCounters()
	assert.Equal(t, int64(2), produced)
	assert.Equal(t, int64(1), consumed)

	producedAgain, consumedAgain := q.SnapshotAndResetCounters()
	assert.Zero(t, producedAgain)
	assert.Zero(t, consumedAgain)
}
