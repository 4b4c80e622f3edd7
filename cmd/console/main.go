// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/relabs-tech/device_motion/internal/app"
	"github.com/relabs-tech/device_motion/internal/config"
	"github.com/relabs-tech/device_motion/internal/logger"
)

func main() {
	configPath := flag.String("config", "./motion_config.txt", "path to configuration file")
	noColor := flag.Bool("nocolor", false, "disable colored output")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg.Info("starting device motion mock console")

	if err := app.RunMockConsole(ctx, cfg, lg, os.Stdout, !*noColor); err != nil {
		lg.Fatal("fatal", zap.Error(err))
	}
}
