// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package consumer runs the egress side of the pipeline: drain the shared
// bounded queue, batch records into envelopes, and push them to C2.
package consumer

import (
	"context"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/egress"
	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/queue"
	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/record"
)

// batchSize is how many records accumulate in the local buffer before an
// Envelope is built and sent.
const batchSize = 200

// Consumer owns one egress.Client and repeatedly drains the shared queue.
type Consumer struct {
	id     int
	q      *queue.Queue
	client *egress.Client
}

// New builds a Consumer bound to q, pushing through client.
func New(id int, q *queue.Queue, client *egress.Client) *Consumer {
	return &Consumer{id: id, q: q, client: client}
}

// Run connects the egress client then loops forever: dequeue, buffer, and
// flush every batchSize records. A send failure is logged and the buffer is
// cleared regardless (current, deliberately preserved behavior).
func (c *Consumer) Run(ctx context.Context) {
	if err := c.client.Connect(ctx); err != nil {
		cclog.Errorf("consumer[%d]: connect failed: %s", c.id, err.Error())
		return
	}
	defer c.client.Close()

	buf := make([][]byte, 0, batchSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		buf = append(buf, c.q.Dequeue())
		if len(buf) < batchSize {
			continue
		}

		c.flush(buf)
		buf = buf[:0]
	}
}

func (c *Consumer) flush(records [][]byte) {
	env := record.NewEnvelope(records)

	encoded, err := env.Encode()
	if err != nil {
		cclog.Fatalf("consumer[%d]: encoding envelope: %s", c.id, err.Error())
	}

	c.client.Push(encoded)
}
