// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"context"
	"fmt"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"

	"github.com/NHR-FAU/opcua-telemetry-bridge/pkg/record"
)

// notifyBuffer is the channel depth for the subscription's notification
// stream.
const notifyBuffer = 256

// EnsureSubscription creates the client's single subscription on first use.
// Safe to call multiple times; subsequent calls are no-ops.
func (c *Client) EnsureSubscription(ctx context.Context) error {
	if c.sub != nil {
		return nil
	}

	notifCh := make(chan *opcua.PublishNotificationData, notifyBuffer)

	params := &opcua.SubscriptionParameters{
		Interval:                   publishingInterval,
		LifetimeCount:              lifetimeCount,
		MaxKeepAliveCount:          maxKeepAliveCount,
		MaxNotificationsPerPublish: 0,
		Priority:                   subscriptionPrio,
	}

	sub, err := c.uaClient.Subscribe(ctx, params, notifCh)
	if err != nil {
		return fmt.Errorf("ingest: creating subscription: %w", err)
	}

	c.sub = sub
	go c.handleNotifications(ctx, notifCh)

	return nil
}

// Subscribe registers monitored items for nodeIDs (already-stripped
// identifier strings), chunking CreateMonitoredItems calls at
// monitoredItemChunkSize. Failure of a chunk fails the call; prior chunks in
// the same call remain registered.
func (c *Client) Subscribe(ctx context.Context, nodeIDs []string) error {
	if err := c.EnsureSubscription(ctx); err != nil {
		return err
	}

	for start := 0; start < len(nodeIDs); start += monitoredItemChunkSize {
		end := start + monitoredItemChunkSize
		if end > len(nodeIDs) {
			end = len(nodeIDs)
		}

		if err := c.createMonitoredItems(ctx, nodeIDs[start:end]); err != nil {
			return fmt.Errorf("ingest: registering monitored items [%d:%d]: %w", start, end, err)
		}
	}

	return nil
}

func (c *Client) createMonitoredItems(ctx context.Context, nodeIDs []string) error {
	reqs := make([]*ua.MonitoredItemCreateRequest, 0, len(nodeIDs))
	handleFor := make([]string, 0, len(nodeIDs))

	for _, id := range nodeIDs {
		handle := c.nextHandle
		c.nextHandle++

		reqs = append(reqs, &ua.MonitoredItemCreateRequest{
			ItemToMonitor: &ua.ReadValueID{
				NodeID:      nodeAddress(id),
				AttributeID: ua.AttributeIDValue,
			},
			MonitoringMode: ua.MonitoringModeReporting,
			RequestedParameters: &ua.MonitoringParameters{
				ClientHandle:     handle,
				SamplingInterval: float64(publishingInterval.Milliseconds()),
				QueueSize:        1,
				DiscardOldest:    true,
			},
		})
		handleFor = append(handleFor, id)
	}

	resp, err := c.sub.Monitor(ctx, ua.TimestampsToReturnBoth, reqs...)
	if err != nil {
		return err
	}

	for i, result := range resp.Results {
		if i >= len(handleFor) {
			break
		}
		if result.StatusCode != ua.StatusOK {
			cclog.Warnf("ingest: monitored item for %q rejected: %s", handleFor[i], result.StatusCode)
			continue
		}
		c.handles[reqs[i].RequestedParameters.ClientHandle] = handleFor[i]
	}

	return nil
}

func (c *Client) handleNotifications(ctx context.Context, notifCh chan *opcua.PublishNotificationData) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-notifCh:
			if !ok {
				return
			}
			c.processNotification(notif)
		}
	}
}

func (c *Client) processNotification(notif *opcua.PublishNotificationData) {
	if notif == nil || notif.Error != nil {
		if notif != nil && notif.Error != nil {
			cclog.Warnf("ingest: notification error: %s", notif.Error.Error())
		}
		return
	}

	change, ok := notif.Value.(*ua.DataChangeNotification)
	if !ok {
		return
	}

	for _, item := range change.MonitoredItems {
		c.processDataChange(item)
	}
}

func (c *Client) processDataChange(item *ua.MonitoredItemNotification) {
	nodeID, known := c.handles[item.ClientHandle]
	if !known {
		return
	}

	sample, ok := sampleFromDataValue(nodeID, item.Value)
	if !ok {
		return
	}

	rec := record.NewRecord(sample.sensor, sample.tMillis, sample.value)
	enc := rec.Encode()
	c.q.Enqueue(enc)
}

type sample struct {
	sensor  string
	tMillis int64
	value   float64
}

// sampleFromDataValue implements the drop discipline: a change notification
// whose value is not a float scalar, or whose source timestamp is absent,
// produces no sample.
func sampleFromDataValue(nodeID string, dv *ua.DataValue) (sample, bool) {
	if dv == nil || dv.Value == nil {
		return sample{}, false
	}

	var v float64
	switch dv.Value.Type() {
	case ua.TypeIDFloat:
		v = float64(dv.Value.Float())
	case ua.TypeIDDouble:
		v = dv.Value.Float()
	default:
		return sample{}, false
	}

	if dv.SourceTimestamp.IsZero() {
		return sample{}, false
	}

	return sample{
		sensor:  sensorName(nodeID),
		tMillis: dv.SourceTimestamp.UTC().UnixMilli(),
		value:   v,
	}, true
}
