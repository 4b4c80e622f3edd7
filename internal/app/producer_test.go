// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/relabs-tech/device_motion/internal/config"
	"github.com/relabs-tech/device_motion/internal/motion"
	"github.com/relabs-tech/device_motion/internal/sensors"
	"github.com/relabs-tech/device_motion/internal/telemetry"
)

type memoryPublisher struct {
	mu     sync.Mutex
	frames []telemetry.Frame
	err    error
}

func (m *memoryPublisher) Publish(f telemetry.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *memoryPublisher) all() []telemetry.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]telemetry.Frame(nil), m.frames...)
}

func TestProducerPublishesFrames(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	session := newTestSession(t)
	pub := &memoryPublisher{}
	p := NewProducer(session, sensors.NewMockSource(), pub, 5*time.Millisecond, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return p.Published() >= 5 }, 2*time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		return logs.FilterMessage("device motion status").Len() > 0
	}, 2*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	frames := pub.all()
	require.GreaterOrEqual(t, len(frames), 5)
	for i, f := range frames {
		assert.Equal(t, session.ID(), f.SessionID)
		assert.Len(t, f.Channels, len(motion.KnownChannels))
		if i > 0 {
			assert.Greater(t, f.Iteration, frames[i-1].Iteration)
		}
	}
	assert.Equal(t, 1, logs.FilterMessage("device motion producer stopped").Len())
}

func TestProducerCountsPublishErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	pub := &memoryPublisher{err: errors.New("broker gone")}
	p := NewProducer(newTestSession(t), sensors.NewMockSource(), pub, 0, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return p.publishErrors.Load() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, int64(0), p.Published())
	assert.GreaterOrEqual(t, logs.FilterMessage("frame publish failed").Len(), 3)
}

func TestProducerHandleControl(t *testing.T) {
	session := newTestSession(t)
	p := NewProducer(session, sensors.NewMockSource(), &memoryPublisher{}, 0, nil)

	session.Pipeline().Ingest(motion.Sample{motion.GravityZ: 1})
	before := session.ID()

	p.HandleControl(telemetry.Control{Action: "calibrate"})
	assert.Equal(t, before, session.ID())

	p.HandleControl(telemetry.Control{Action: telemetry.ActionReset})
	assert.NotEqual(t, before, session.ID())
	assert.Equal(t, 0, session.Pipeline().WindowLen(motion.GravityZ))
}

func TestNewSessionFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.HardwareTier = motion.TierConstrained
	cfg.HysteresisWindow = 7

	s, err := NewSessionFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, motion.Config{SampleInterval: 100 * time.Millisecond, WindowSize: 7}, s.Pipeline().Config())
}

func TestNewSource(t *testing.T) {
	cfg := config.Default()

	src, err := NewSource(cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = src.Next()
	assert.NoError(t, err)

	cfg.MotionSource = "camera"
	_, err = NewSource(cfg, zap.NewNop())
	assert.Error(t, err)
}
