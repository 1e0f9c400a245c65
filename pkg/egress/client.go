// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package egress implements the reconnecting secure-WebSocket client used to
// talk to the C2 endpoint: a one-shot tag-discovery exchange at startup, and
// a long-lived binary envelope stream thereafter.
//
// Each Client owns exactly one connection. Producers and Consumers never
// share a Client; Consumer dials its own connection, and the Orchestrator
// dials a throwaway one for discovery.
package egress

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/gorilla/websocket"
)

// reconnectDelay is the pause between failed connection attempts. The
// original client slept synchronously here; this one waits on a timer that
// observes context cancellation, so a caller can still shut it down instead
// of being stuck in an unconditional sleep.
const reconnectDelay = 5 * time.Second

// Client is a single secure WebSocket connection to the C2 endpoint.
type Client struct {
	url         string
	headerKey   string
	headerValue string

	conn *websocket.Conn
}

// New builds a Client for the given endpoint. username/password are encoded
// as a Basic-Auth-style header value under headerKey, matching the static
// authorization contract documented for the C2 handshake.
func New(url, headerKey, username, password string) *Client {
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return &Client{
		url:         url,
		headerKey:   headerKey,
		headerValue: "Basic " + token,
	}
}

// Connect dials the endpoint, retrying every 5 seconds on failure until it
// succeeds or ctx is cancelled. Exactly one attempt must succeed before Push
// or the discovery methods may be used.
func (c *Client) Connect(ctx context.Context) error {
	header := http.Header{}
	header.Set(c.headerKey, c.headerValue)

	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
		if err == nil {
			c.conn = conn
			return nil
		}

		cclog.Errorf("egress: connect to %s failed: %s", c.url, err.Error())

		timer := time.NewTimer(reconnectDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Close closes the underlying WebSocket connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Push sends a single binary WebSocket frame carrying an already-encoded
// Envelope. A send failure is logged but does not tear down or reconnect the
// connection, matching the documented (and explicitly not-to-be-fixed)
// current behavior of the C2 telemetry path.
func (c *Client) Push(envelope []byte) {
	if err := c.conn.WriteMessage(websocket.BinaryMessage, envelope); err != nil {
		cclog.Errorf("egress: push failed: %s", err.Error())
	}
}

// discoveryResponse is the shape of each text frame received during tag
// discovery, after the legacy byte-stripping quirk has been applied.
type discoveryResponse struct {
	Msg struct {
		Data []struct {
			TagName string `json:"tagName"`
		} `json:"data"`
		FinalBatch bool `json:"finalBatch"`
	} `json:"msg"`
}

// emptySentinel is returned verbatim when discovery yields no tags. This is
// a preserved legacy quirk, not a deliberate design choice: see DESIGN.md.
var emptySentinel = []string{"Server didn't respond"}

// Discover performs the one-shot tag-discovery exchange: send request as a
// single text frame, then read text frames until one carries
// msg.finalBatch == true, collecting every msg.data[*].tagName along the way.
func (c *Client) Discover(request []byte) ([]string, error) {
	if err := c.conn.WriteMessage(websocket.TextMessage, request); err != nil {
		return nil, fmt.Errorf("egress: sending discovery request: %w", err)
	}

	var tags []string

	for {
		typ, payload, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("egress: reading discovery response: %w", err)
		}
		if typ != websocket.TextMessage {
			continue
		}

		stripped := stripLegacyBytes(payload)

		var resp discoveryResponse
		if err := json.Unmarshal(stripped, &resp); err != nil {
			return nil, fmt.Errorf("egress: parsing discovery response: %w", err)
		}

		for _, d := range resp.Msg.Data {
			tags = append(tags, d.TagName)
		}

		if resp.Msg.FinalBatch {
			break
		}
	}

	if len(tags) == 0 {
		return emptySentinel, nil
	}

	return tags, nil
}

// stripLegacyBytes excises the byte at index 31 and the byte at len-2 of the
// raw discovery response payload, a quirk of the specific C2 implementation
// this client talks to. Preserved as-is; do not "fix" without confirming
// against that implementation first.
func stripLegacyBytes(b []byte) []byte {
	if len(b) < 32 {
		return b
	}

	out := make([]byte, 0, len(b)-2)
	out = append(out, b[:31]...)
	out = append(out, b[32:]...)

	cut := len(out) - 2
	if cut < 0 || cut >= len(out) {
		return out
	}

	out = append(out[:cut], out[cut+1:]...)
	return out
}
