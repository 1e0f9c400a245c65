// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates the bridge's config.json.
//
// Configuration is read once at startup, validated against a JSON Schema, and
// returned as an immutable value threaded through the rest of the process via
// constructor arguments rather than a package-level global.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// HeaderConfig carries the static Basic-Auth-style header used to authenticate
// the WebSocket handshake against the C2 endpoint.
type HeaderConfig struct {
	Key      string `json:"key"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// OpcConfig carries the connection details for the OPC UA server.
type OpcConfig struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// DateRange is part of the opaque tag-discovery filter. Its fields are never
// interpreted by this repository; they are forwarded verbatim to C2.
type DateRange struct {
	ID        int   `json:"id"`
	Duration  int   `json:"duration"`
	Selection int   `json:"selection"`
	FromDate  int64 `json:"fromDate"`
	ToDate    int64 `json:"toDate"`
}

// TagType is part of the opaque tag-discovery filter.
type TagType struct {
	ID int `json:"id"`
}

// Filter is the opaque tag-discovery query body. When a Message is marshaled
// for transmission, Filter MUST be embedded as a JSON-encoded string rather
// than a nested object (see Message.MarshalJSON).
type Filter struct {
	DateRange      DateRange `json:"dateRange"`
	ID             int       `json:"id"`
	Type           TagType   `json:"type"`
	LastModified   int64     `json:"lastModified"`
	AssetName      string    `json:"assetName"`
	StartingRow    int       `json:"startingRow"`
	MaxRecordCount int       `json:"maxRecordCount"`
	OrderByProp    string    `json:"orderByProperty"`
	Descending     bool      `json:"descending"`
	FilterDeleted  bool      `json:"filterDeleted"`
}

// Message is the outer tag-discovery request document sent to C2 as a single
// text frame.
type Message struct {
	MsgType string `json:"msg_type"`
	Filter  Filter `json:"filter"`
}

// MarshalJSON doubly-encodes Filter: the outer document's "filter" field is a
// JSON string containing the serialized Filter, not a nested object. This is
// a wire requirement of the C2 discovery endpoint, not a convenience.
func (m Message) MarshalJSON() ([]byte, error) {
	filterJSON, err := json.Marshal(m.Filter)
	if err != nil {
		return nil, fmt.Errorf("config: encoding filter: %w", err)
	}

	return json.Marshal(struct {
		MsgType string `json:"msg_type"`
		Filter  string `json:"filter"`
	}{
		MsgType: m.MsgType,
		Filter:  string(filterJSON),
	})
}

// Config is the top-level shape of config.json.
type Config struct {
	Base          string       `json:"base"`
	Header        HeaderConfig `json:"header"`
	Opc           OpcConfig    `json:"opc"`
	Message       Message      `json:"message"`
	NumProducers  int          `json:"num_producers"`
	NumConsumers  int          `json:"num_consumers"`
	MetricsAddr   string       `json:"metrics-addr"`
	QueueCapacity int          `json:"queue-capacity"`
}

// DefaultQueueCapacity is used when config.json omits queue-capacity.
const DefaultQueueCapacity = 500_000

// DefaultMetricsAddr is used when config.json omits metrics-addr.
const DefaultMetricsAddr = ":9090"

// Load reads, schema-validates, and decodes config.json at path.
//
// Unknown top-level fields are rejected. Calls cclog.Fatal on any error, since
// a malformed or unreadable configuration file is unrecoverable at startup.
func Load(path string) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		cclog.Fatalf("config: reading %q: %s", path, err.Error())
	}

	Validate(raw)

	cfg := Config{
		MetricsAddr:   DefaultMetricsAddr,
		QueueCapacity: DefaultQueueCapacity,
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		cclog.Fatalf("config: decoding %q: %s", path, err.Error())
	}

	if cfg.NumProducers <= 0 {
		cclog.Fatalf("config: num_producers must be > 0, got %d", cfg.NumProducers)
	}
	if cfg.NumConsumers <= 0 {
		cclog.Fatalf("config: num_consumers must be > 0, got %d", cfg.NumConsumers)
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}

	return cfg
}
