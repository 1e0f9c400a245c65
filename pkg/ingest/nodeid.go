// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"fmt"
	"strings"
)

// nodeIDPrefixLen is the number of leading characters stripped from a node
// id's textual form during browsing. This corresponds to a serialization
// prefix the server emits; it is not a configurable value.
const nodeIDPrefixLen = 13

// maxDeviceNumber bounds the Device<N> display-name match used to recognize
// a device node while browsing.
const maxDeviceNumber = 102

// deviceNames is the fixed set of substrings ("Device1".."Device102") tested
// against a node's display name to recognize it as a device. Matching is by
// substring, not exact equality or regex anchoring, so e.g. "Device1" also
// matches a display name containing "Device10" — preserved exactly as
// documented rather than "fixed" to use word-boundary matching.
var deviceNames = buildDeviceNames()

func buildDeviceNames() []string {
	names := make([]string, maxDeviceNumber)
	for i := 1; i <= maxDeviceNumber; i++ {
		names[i-1] = fmt.Sprintf("Device%d", i)
	}
	return names
}

// isDeviceDisplayName reports whether displayName identifies a device node,
// i.e. contains one of the fixed Device1..Device102 substrings.
func isDeviceDisplayName(displayName string) bool {
	for _, name := range deviceNames {
		if strings.Contains(displayName, name) {
			return true
		}
	}
	return false
}

// stripSerializationPrefix removes the leading 13 characters from a node
// id's textual form (e.g. "ns=2;s=Channel1.Device7.Temperature"), as
// produced by (*ua.NodeID).String().
func stripSerializationPrefix(nodeIDText string) string {
	if len(nodeIDText) <= nodeIDPrefixLen {
		return ""
	}
	return nodeIDText[nodeIDPrefixLen:]
}

// sensorName returns the last dot-separated segment of a node id's textual
// form, used as the Record.Sensor value.
func sensorName(nodeIDText string) string {
	idx := strings.LastIndexByte(nodeIDText, '.')
	if idx < 0 {
		return nodeIDText
	}
	return nodeIDText[idx+1:]
}
