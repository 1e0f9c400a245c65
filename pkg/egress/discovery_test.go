// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package egress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStripLegacyBytes exercises spec scenario 5: a canonical JSON payload
// with two extra legacy bytes inserted — one at index 31, one as the
// penultimate byte — must decode, after stripping, to the original payload.
func TestStripLegacyBytes(t *testing.T) {
	canonical := []byte(`{"msg":{"data":[{"tagName":"T1"},{"tagName":"T2"}],"finalBatch":true}}`)
	require.GreaterOrEqual(t, len(canonical), 32)

	// Insert a marker byte 'X' at index 31 of the canonical payload.
	withX := make([]byte, 0, len(canonical)+1)
	withX = append(withX, canonical[:31]...)
	withX = append(withX, 'X')
	withX = append(withX, canonical[31:]...)

	// Insert a marker byte 'Y' so that it lands at index len(withX)-2 of the
	// final padded string (i.e. one position before the last byte).
	padded := make([]byte, 0, len(withX)+1)
	padded = append(padded, withX[:len(withX)-1]...)
	padded = append(padded, 'Y')
	padded = append(padded, withX[len(withX)-1])

	stripped := stripLegacyBytes(padded)
	assert.Equal(t, canonical, stripped)
}

func TestDiscoveryResponseParsing(t *testing.T) {
	canonical := []byte(`{"msg":{"data":[{"tagName":"T1"},{"tagName":"T2"}],"finalBatch":true}}`)

	var resp discoveryResponse
	require.NoError(t, json.Unmarshal(canonical, &resp))

	require.Len(t, resp.Msg.Data, 2)
	assert.Equal(t, "T1", resp.Msg.Data[0].TagName)
	assert.Equal(t, "T2", resp.Msg.Data[1].TagName)
	assert.True(t, resp.Msg.FinalBatch)
}

func TestEmptySentinel(t *testing.T) {
	assert.Equal(t, []string{"Server didn't respond"}, emptySentinel)
}
