// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

var configSchema = `
{
  "type": "object",
  "required": ["base", "header", "opc", "message", "num_producers", "num_consumers"],
  "properties": {
    "base": {
      "description": "wss:// URL of the C2 endpoint.",
      "type": "string"
    },
    "header": {
      "description": "Static authorization header sent during the C2 WebSocket handshake.",
      "type": "object",
      "required": ["key", "username", "password"],
      "properties": {
        "key": { "type": "string" },
        "username": { "type": "string" },
        "password": { "type": "string" }
      }
    },
    "opc": {
      "description": "OPC UA server connection details.",
      "type": "object",
      "required": ["url", "username", "password"],
      "properties": {
        "url": { "type": "string" },
        "username": { "type": "string" },
        "password": { "type": "string" }
      }
    },
    "message": {
      "description": "Tag-discovery request sent to C2 at startup.",
      "type": "object",
      "required": ["msg_type", "filter"],
      "properties": {
        "msg_type": { "type": "string" },
        "filter": {
          "type": "object",
          "required": [
            "dateRange", "id", "type", "lastModified", "assetName",
            "startingRow", "maxRecordCount", "orderByProperty",
            "descending", "filterDeleted"
          ],
          "properties": {
            "dateRange": {
              "type": "object",
              "required": ["id", "duration", "selection", "fromDate", "toDate"],
              "properties": {
                "id": { "type": "integer" },
                "duration": { "type": "integer" },
                "selection": { "type": "integer" },
                "fromDate": { "type": "integer" },
                "toDate": { "type": "integer" }
              }
            },
            "id": { "type": "integer" },
            "type": {
              "type": "object",
              "required": ["id"],
              "properties": { "id": { "type": "integer" } }
            },
            "lastModified": { "type": "integer" },
            "assetName": { "type": "string" },
            "startingRow": { "type": "integer" },
            "maxRecordCount": { "type": "integer" },
            "orderByProperty": { "type": "string" },
            "descending": { "type": "boolean" },
            "filterDeleted": { "type": "boolean" }
          }
        }
      }
    },
    "num_producers": {
      "description": "Number of OPC UA ingest workers; the tag list is partitioned across them.",
      "type": "integer",
      "minimum": 1
    },
    "num_consumers": {
      "description": "Number of egress workers draining the shared bounded queue.",
      "type": "integer",
      "minimum": 1
    },
    "metrics-addr": {
      "description": "Listen address for the Prometheus /metrics endpoint.",
      "type": "string"
    },
    "queue-capacity": {
      "description": "Capacity of the shared bounded record queue. Defaults to 500000.",
      "type": "integer",
      "minimum": 1
    }
  }
}
`
