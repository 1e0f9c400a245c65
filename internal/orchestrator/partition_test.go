// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package orchestrator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPartitionRemainderChunk exercises spec scenario 6: 1000 tags,
// num_producers = 3 yields three chunks of 333 and a trailing chunk of 1.
func TestPartitionRemainderChunk(t *testing.T) {
	tags := make([]string, 1000)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag-%d", i)
	}

	chunks := Partition(tags, 3)
	require.Len(t, chunks, 4)
	assert.Len(t, chunks[0], 333)
	assert.Len(t, chunks[1], 333)
	assert.Len(t, chunks[2], 333)
	assert.Len(t, chunks[3], 1)

	var total int
	for _, c := range chunks {
		total += len(c)
	}
	assert.Equal(t, 1000, total)
}

func TestPartitionExactDivision(t *testing.T) {
	tags := make([]string, 900)
	chunks := Partition(tags, 3)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Len(t, c, 300)
	}
}

func TestPartitionFewerTagsThanProducers(t *testing.T) {
	tags := []string{"a", "b"}
	chunks := Partition(tags, 5)
	require.Len(t, chunks, 1)
	assert.Equal(t, tags, chunks[0])
}

func TestPartitionEmpty(t *testing.T) {
	assert.Nil(t, Partition(nil, 3))
}
