// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSensorNameExtraction exercises spec scenario 4.
func TestSensorNameExtraction(t *testing.T) {
	assert.Equal(t, "Temperature", sensorName("ns=2;s=Channel1.Device7.Temperature"))
	assert.Equal(t, "Channel1", sensorName("Channel1"))
}

func TestStripSerializationPrefix(t *testing.T) {
	// "ns=2;s=Channel1.Device7.Temperature" -- first 13 chars stripped.
	in := "ns=2;s=Channel1.Device7.Temperature"
	assert.Equal(t, in[13:], stripSerializationPrefix(in))
	assert.Equal(t, "l1.Device7.Temperature", stripSerializationPrefix(in))
}

func TestStripSerializationPrefixShortInput(t *testing.T) {
	assert.Equal(t, "", stripSerializationPrefix("short"))
}

func TestIsDeviceDisplayName(t *testing.T) {
	assert.True(t, isDeviceDisplayName("Device1"))
	assert.True(t, isDeviceDisplayName("Device102"))
	assert.True(t, isDeviceDisplayName("SomePrefixDevice42Suffix"))
	assert.False(t, isDeviceDisplayName("Channel1"))
}

func TestIsDeviceDisplayNameSubstringQuirk(t *testing.T) {
	// "Device1" is a substring of "Device10", so this must match — the
	// substring check is a preserved quirk, not a bug to avoid.
	assert.True(t, isDeviceDisplayName("Device10"))
}
