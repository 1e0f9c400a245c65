// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest owns the OPC UA session used to discover tag node ids and
// stream their value changes into the shared bounded queue.
//
// One Client is exclusively owned by one Producer: it never shares its
// session or subscription with another worker.
package ingest

import (
	"context"
	"fmt"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"

	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/queue"
)

// namespace is the single configured OPC UA namespace index for all
// monitored tags.
const namespace = 2

// connectRetries is how many times Connect attempts to establish a session
// before surfacing the failure to its caller.
const connectRetries = 3

// subscribeBatchSize mirrors the batch size the Producer hands to a single
// Subscribe call. Subscribe does not enforce it: it accepts any number of
// node ids and chunks them at monitoredItemChunkSize per server call.
const subscribeBatchSize = 1000

// monitoredItemChunkSize is the number of monitored items registered per
// CreateMonitoredItems call — a server-side limit preserved as-is.
const monitoredItemChunkSize = 809

// publishingInterval, lifetimeCount and maxKeepAliveCount are the fixed
// subscription parameters used for every Producer's session.
const (
	publishingInterval = 1000 * time.Millisecond
	lifetimeCount      = 90
	maxKeepAliveCount  = 30
	subscriptionPrio   = 0
)

// Config carries the OPC UA connection details for one Client.
type Config struct {
	URL      string
	Username string
	Password string

	// CertDir is where the self-signed application certificate is persisted.
	CertDir string
}

// Client owns one OPC UA session, its single subscription, and the node-id
// bookkeeping needed to route notifications back to sensor names.
type Client struct {
	cfg Config
	q   *queue.Queue

	uaClient *opcua.Client
	sub      *opcua.Subscription

	nextHandle uint32
	handles    map[uint32]string
}

// New builds a Client bound to q; every accepted sample is enqueued there.
func New(cfg Config, q *queue.Queue) *Client {
	return &Client{
		cfg:     cfg,
		q:       q,
		handles: make(map[uint32]string),
	}
}

// Connect establishes the OPC UA session with the anonymous user-token
// policy over SecurityPolicy::None, retrying up to connectRetries times.
func (c *Client) Connect(ctx context.Context) error {
	id, err := loadOrCreateIdentity(c.cfg.CertDir)
	if err != nil {
		return fmt.Errorf("ingest: loading application identity: %w", err)
	}

	opts := []opcua.Option{
		opcua.SecurityPolicy("None"),
		opcua.SecurityModeString("None"),
		opcua.AuthAnonymous(),
		opcua.ApplicationName("Client1"),
		opcua.ApplicationURI("urn:client1"),
		opcua.ProductURI("urn:client11"),
		opcua.Certificate(id.certDER),
		opcua.PrivateKey(id.key),
	}

	client, err := opcua.NewClient(c.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("ingest: building client for %q: %w", c.cfg.URL, err)
	}

	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		if lastErr = client.Connect(ctx); lastErr == nil {
			c.uaClient = client
			cclog.Infof("ingest: connected to %s", c.cfg.URL)
			return nil
		}
		cclog.Warnf("ingest: connect attempt %d/%d to %s failed: %s", attempt, connectRetries, c.cfg.URL, lastErr.Error())
	}

	return fmt.Errorf("ingest: connecting to %q after %d attempts: %w", c.cfg.URL, connectRetries, lastErr)
}

// Close tears down the subscription and session.
func (c *Client) Close(ctx context.Context) {
	if c.uaClient == nil {
		return
	}
	if err := c.uaClient.Close(ctx); err != nil {
		cclog.Warnf("ingest: closing session: %s", err.Error())
	}
}

// Run blocks until ctx is cancelled, pumping the session's background I/O.
// gopcua drives the secure channel's read loop on its own goroutines, so the
// "dedicated worker thread" the session requires degrades to parking the
// calling goroutine until shutdown.
func (c *Client) Run(ctx context.Context) {
	<-ctx.Done()
}

// nodeAddress returns the fully-qualified node id for an already-stripped
// identifier string (see stripSerializationPrefix), in the fixed namespace.
func nodeAddress(identifier string) *ua.NodeID {
	return ua.NewStringNodeID(namespace, identifier)
}
