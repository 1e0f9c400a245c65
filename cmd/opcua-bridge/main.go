// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/NHR-FAU/opcua-telemetry-bridge/internal/config"
	"github.com/NHR-FAU/opcua-telemetry-bridge/internal/orchestrator"
)

func main() {
	var flagConfigFile string
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Path to the bridge's `config.json`")
	flag.Parse()

	cfg := config.Load(flagConfigFile)

	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cclog.Info("received shutdown signal")
		cancel()
	}()

	o := orchestrator.New(cfg)
	if err := o.Run(ctx); err != nil {
		cclog.Fatalf("orchestrator exited: %s", err.Error())
	}
}
