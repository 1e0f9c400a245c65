// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package orchestrator wires together tag synchronization, the bounded
// queue, and the producer/consumer worker pools into one running process.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/go-co-op/gocron/v2"

	"github.com/NHR-FAU/opcua-telemetry-bridge/internal/config"
	"github.com/NHR-FAU/opcua-telemetry-bridge/internal/consumer"
	"github.com/NHR-FAU/opcua-telemetry-bridge/internal/metrics"
	"github.com/NHR-FAU/opcua-telemetry-bridge/internal/producer"
	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/egress"
	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/ingest"
	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/queue"
)

// metricsTickInterval is the fixed period over which throughput is logged
// and counters are reset.
const metricsTickInterval = 10 * time.Second

// certDir is where each Producer's OPC UA application certificate is
// persisted, relative to the process's working directory.
const certDir = "./opcua-cert"

// Orchestrator owns startup sequencing: tag sync, partitioning, and spawning
// the producer/consumer pools.
type Orchestrator struct {
	cfg   config.Config
	q     *queue.Queue
	stats *metrics.Registry
}

// New builds an Orchestrator for cfg, creating the shared bounded queue at
// the configured (or default) capacity.
func New(cfg config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		q:     queue.New(cfg.QueueCapacity),
		stats: metrics.New(),
	}
}

// Run performs the full startup sequence and then blocks: sync tags,
// partition, spawn producers and consumers, start the metrics tick, and
// serve /metrics. It returns an error if tag discovery or the metrics tick
// fails to start; otherwise it returns only after ctx is cancelled and every
// worker goroutine has exited.
func (o *Orchestrator) Run(ctx context.Context) error {
	tags, err := o.syncTags(ctx)
	if err != nil {
		return fmt.Errorf("orchestrator: tag discovery: %w", err)
	}
	cclog.Infof("orchestrator: synchronized %d tags from C2", len(tags))

	chunks := Partition(tags, o.cfg.NumProducers)
	cclog.Infof("orchestrator: partitioned tags into %d chunks for %d configured producers", len(chunks), o.cfg.NumProducers)

	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(id int, tags []string) {
			defer wg.Done()
			p := producer.New(id, o.ingestConfig(), tags, o.q)
			p.Run(ctx)
		}(i, chunk)
	}

	for i := 0; i < o.cfg.NumConsumers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			client := egress.New(o.cfg.Base, o.cfg.Header.Key, o.cfg.Header.Username, o.cfg.Header.Password)
			c := consumer.New(id, o.q, client)
			c.Run(ctx)
		}(i)
	}

	scheduler, err := o.startMetricsTick(ctx)
	if err != nil {
		return fmt.Errorf("orchestrator: starting metrics tick: %w", err)
	}
	defer scheduler.Shutdown()

	go o.stats.Serve(ctx, o.cfg.MetricsAddr)

	wg.Wait()
	return nil
}

func (o *Orchestrator) ingestConfig() ingest.Config {
	return ingest.Config{
		URL:      o.cfg.Opc.URL,
		Username: o.cfg.Opc.Username,
		Password: o.cfg.Opc.Password,
		CertDir:  certDir,
	}
}

// syncTags performs the one-shot tag-discovery exchange via a throwaway
// EgressClient, per §4.6 step 1.
func (o *Orchestrator) syncTags(ctx context.Context) ([]string, error) {
	client := egress.New(o.cfg.Base, o.cfg.Header.Key, o.cfg.Header.Username, o.cfg.Header.Password)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting for tag discovery: %w", err)
	}
	defer client.Close()

	request, err := json.Marshal(o.cfg.Message)
	if err != nil {
		return nil, fmt.Errorf("encoding discovery request: %w", err)
	}

	tags, err := client.Discover(request)
	if err != nil {
		return nil, fmt.Errorf("discovery exchange: %w", err)
	}

	return tags, nil
}

// startMetricsTick registers the gocron job that every 10 seconds reads and
// resets the queue's produced/consumed counters, logs them, and updates the
// Prometheus gauges.
func (o *Orchestrator) startMetricsTick(ctx context.Context) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(metricsTickInterval),
		gocron.NewTask(func() {
			produced, consumed := o.q.SnapshotAndResetCounters()
			average := float64(consumed) / metricsTickInterval.Seconds()

			cclog.Infof("In the last 10 seconds: Produced: %d, Consumed: %d", produced, consumed)
			cclog.Infof("Average: %.2f", average)

			o.stats.Observe(produced, consumed, o.q.Len())
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	return s, nil
}
