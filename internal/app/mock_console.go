// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"

	"github.com/relabs-tech/device_motion/internal/config"
	"github.com/relabs-tech/device_motion/internal/sensors"
)

// RunMockConsole runs a local pipeline on the mock source without a broker
// and prints the status report every STATUS_LOG_INTERVAL.
func RunMockConsole(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer, colors bool) error {
	session, err := NewSessionFromConfig(cfg, log)
	if err != nil {
		return err
	}
	pipeline := session.Pipeline()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := &FrameStore{}
	errCh := make(chan error, 1)
	go func() {
		errCh <- sensors.Run(ctx, sensors.NewMockSource(), pipeline.Config().SampleInterval, pipeline, func(sensors.Reading) {
			store.Set(session.Frame(time.Now()))
		})
	}()

	err = consoleLoop(ctx, store, cfg.StatusInterval(), out, aurora.NewAurora(colors))
	cancel()
	if runErr := <-errCh; err == nil && !errors.Is(runErr, context.Canceled) {
		err = runErr
	}
	return err
}
