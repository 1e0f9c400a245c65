// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"encoding/json"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks instance against configSchema, aborting the process on any
// schema violation or malformed JSON.
func Validate(instance json.RawMessage) {
	sch, err := jsonschema.CompileString("config-schema.json", configSchema)
	if err != nil {
		cclog.Fatalf("config: compiling schema: %#v", err)
	}

	var v any
	if err := json.Unmarshal(instance, &v); err != nil {
		cclog.Fatalf("config: %s", err.Error())
	}

	if err := sch.Validate(v); err != nil {
		cclog.Fatalf("config: validating config.json: %#v", err)
	}
}
