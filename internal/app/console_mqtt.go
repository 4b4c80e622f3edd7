// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"

	"github.com/relabs-tech/device_motion/internal/config"
	"github.com/relabs-tech/device_motion/internal/motion"
	"github.com/relabs-tech/device_motion/internal/telemetry"
)

// RenderFrame lays a frame out like the pipeline status report. Lines whose
// smoothed value is above 100% are red and negative ones yellow.
func RenderFrame(f telemetry.Frame, au aurora.Aurora) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", au.Bold(f.Title()))
	fmt.Fprintf(&b, "    iteration    %d\n", f.Iteration)
	if f.Faults > 0 {
		fmt.Fprintf(&b, "    faults       %d\n", au.Yellow(f.Faults))
	}

	for _, s := range motion.Sections {
		b.WriteString("\n")
		b.WriteString(s.Title)
		b.WriteString("\n")
		for _, field := range s.Fields {
			st, _ := f.Channel(field.Channel)
			line := motion.FormatLine(field.Label, st)
			b.WriteString("\t")
			switch {
			case st.Normalized > 1:
				b.WriteString(au.Red(line).String())
			case st.Normalized < 0:
				b.WriteString(au.Yellow(line).String())
			default:
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// consoleLoop prints the latest frame from store to out every interval.
func consoleLoop(ctx context.Context, store *FrameStore, interval time.Duration, out io.Writer, au aurora.Aurora) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastIteration := -1
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f, ok := store.Latest()
			if !ok || f.Iteration == lastIteration {
				continue
			}
			lastIteration = f.Iteration
			if _, err := fmt.Fprintln(out, RenderFrame(f, au)); err != nil {
				return fmt.Errorf("console: write: %w", err)
			}
		}
	}
}

// RunConsoleMQTT subscribes to published frames and prints the status
// report every STATUS_LOG_INTERVAL until ctx is done.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer, colors bool) error {
	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDConsole, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(telemetry.DisconnectQuiesce)

	store := &FrameStore{}
	if err := telemetry.SubscribeFrames(client, cfg.TopicMotion, log, store.Set); err != nil {
		return err
	}

	err = consoleLoop(ctx, store, cfg.StatusInterval(), out, aurora.NewAurora(colors))
	log.Info("console: shutting down")
	return err
}
