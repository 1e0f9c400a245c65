// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	r := NewRecord("Device1.Sensor3.Temperature", 1715933730250, 21.5)

	b := r.Encode()
	got, err := DecodeRecord(b)
	require.NoError(t, err)

	assert.Equal(t, FixedBatchID, got.BatchID)
	assert.Equal(t, "Device1.Sensor3.Temperature", got.Sensor)
	require.Len(t, got.Values, 1)
	assert.Equal(t, int64(1715933730250), got.Values[0].T)
	assert.InDelta(t, 21.5, got.Values[0].V, 1e-9)
}

// TestTimestampConversion exercises the RFC3339 -> UTC epoch-ms conversion
// documented for ingest sample handling.
func TestTimestampConversion(t *testing.T) {
	ts, err := time.Parse(time.RFC3339Nano, "2024-05-17T10:15:30.250+02:00")
	require.NoError(t, err)

	ms := ts.UTC().UnixMilli()
	assert.Equal(t, int64(1715933730250), ms)
}

// TestEnvelopeWellFormed exercises the scenario 3 invariant: for every
// envelope built by NewEnvelope, len(types) == len(messages) and every type
// equals the fixed constant.
func TestEnvelopeWellFormed(t *testing.T) {
	records := make([][]byte, 0, 200)
	for i := 0; i < 200; i++ {
		records = append(records, NewRecord("Device1.Tag", int64(i), float64(i)).Encode())
	}

	env := NewEnvelope(records)
	require.Len(t, env.Types, 200)
	require.Len(t, env.Messages, 200)
	for _, typ := range env.Types {
		assert.Equal(t, EnvelopeType, typ)
	}

	b, err := env.Encode()
	require.NoError(t, err)

	got, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, env.Types, got.Types)
	assert.Equal(t, env.Messages, got.Messages)

	for i, m := range got.Messages {
		rec, err := DecodeRecord(m)
		require.NoError(t, err)
		assert.Equal(t, int64(i), rec.Values[0].T)
	}
}

func TestEnvelopeEncodeRejectsMismatchedLengths(t *testing.T) {
	env := Envelope{Types: []int32{EnvelopeType}, Messages: nil}
	_, err := env.Encode()
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestEnvelopeEncodeRejectsWrongType(t *testing.T) {
	env := Envelope{Types: []int32{42}, Messages: [][]byte{{0x01}}}
	_, err := env.Encode()
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestEmptyEnvelopeRoundTrip(t *testing.T) {
	env := NewEnvelope(nil)
	b, err := env.Encode()
	require.NoError(t, err)

	got, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Empty(t, got.Types)
	assert.Empty(t, got.Messages)
}
