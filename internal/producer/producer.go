// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package producer runs the OPC UA ingest side of the pipeline: one worker
// per assigned tag slice, each owning a single ingest.Client.
package producer

import (
	"context"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/ingest"
	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/queue"
)

// subscribeBatchSize is how many matched node ids are handed to a single
// ingest.Client.Subscribe call; each such call further chunks its server
// calls internally.
const subscribeBatchSize = 1000

// Producer owns one ingest.Client and feeds the shared queue for as long as
// the process runs. A Producer never exits cleanly under normal operation.
type Producer struct {
	id     int
	cfg    ingest.Config
	tags   []string
	client *ingest.Client
}

// New builds a Producer for tag slice tags, bound to q.
func New(id int, cfg ingest.Config, tags []string, q *queue.Queue) *Producer {
	return &Producer{
		id:     id,
		cfg:    cfg,
		tags:   tags,
		client: ingest.New(cfg, q),
	}
}

// Run connects, browses for the assigned tags, subscribes to the matches in
// batches, then blocks pumping the session until ctx is cancelled.
//
// On connect or browse failure the Producer logs and returns (it exits
// cleanly); once subscribed it never returns under normal operation.
func (p *Producer) Run(ctx context.Context) {
	if err := p.client.Connect(ctx); err != nil {
		cclog.Errorf("producer[%d]: connect failed: %s", p.id, err.Error())
		return
	}
	defer p.client.Close(ctx)

	tagSet := make(map[string]struct{}, len(p.tags))
	for _, t := range p.tags {
		tagSet[t] = struct{}{}
	}

	matched, err := p.client.Browse(ctx, tagSet)
	if err != nil {
		cclog.Errorf("producer[%d]: browse failed: %s", p.id, err.Error())
		return
	}

	cclog.Infof("producer[%d]: matched %d of %d assigned tags", p.id, len(matched), len(p.tags))

	for start := 0; start < len(matched); start += subscribeBatchSize {
		end := start + subscribeBatchSize
		if end > len(matched) {
			end = len(matched)
		}

		if err := p.client.Subscribe(ctx, matched[start:end]); err != nil {
			cclog.Errorf("producer[%d]: subscribe batch [%d:%d] failed: %s", p.id, start, end, err.Error())
			continue
		}
	}

	p.client.Run(ctx)
}
