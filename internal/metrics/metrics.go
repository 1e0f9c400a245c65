// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exposes the bridge's own throughput counters on a private
// Prometheus registry, served over HTTP alongside the periodic log line the
// Orchestrator already emits.
package metrics

import (
	"context"
	"net/http"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the produced/consumed/queue-depth gauges this process
// exposes at /metrics. It does not use the global default registry so that
// this package can be embedded without side effects on other instrumented
// components.
type Registry struct {
	registry *prometheus.Registry

	produced  prometheus.Counter
	consumed  prometheus.Counter
	queueSize prometheus.Gauge
}

// New builds a Registry with its counters and gauge pre-registered.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		produced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridge_records_produced_total",
			Help: "Total records enqueued by all producers.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridge_records_consumed_total",
			Help: "Total records dequeued by all consumers.",
		}),
		queueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bridge_queue_depth",
			Help: "Current number of records held in the bounded queue.",
		}),
	}

	reg.MustRegister(r.produced, r.consumed, r.queueSize)

	return r
}

// Observe adds a metrics tick's produced/consumed delta and records the
// current queue depth.
func (r *Registry) Observe(produced, consumed int64, depth int) {
	r.produced.Add(float64(produced))
	r.consumed.Add(float64(consumed))
	r.queueSize.Set(float64(depth))
}

// Serve starts an HTTP server exposing /metrics on addr, running until ctx
// is cancelled.
func (r *Registry) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	cclog.Infof("metrics: serving on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		cclog.Errorf("metrics: server stopped: %s", err.Error())
	}
}
