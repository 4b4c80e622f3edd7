// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/device_motion/internal/config"
	"github.com/relabs-tech/device_motion/internal/motion"
	"github.com/relabs-tech/device_motion/internal/sensors"
	"github.com/relabs-tech/device_motion/internal/telemetry"
)

// FramePublisher sends frames to consumers.
type FramePublisher interface {
	Publish(telemetry.Frame) error
}

// Producer samples a source into a session and publishes a frame after
// every successful capture.
type Producer struct {
	session     *Session
	src         sensors.Source
	pub         FramePublisher
	log         *zap.Logger
	statusEvery time.Duration
	now         func() time.Time

	published     atomic.Int64
	publishErrors atomic.Int64
}

// NewProducer wires a producer. statusEvery <= 0 disables the periodic
// status report.
func NewProducer(session *Session, src sensors.Source, pub FramePublisher, statusEvery time.Duration, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Producer{
		session:     session,
		src:         src,
		pub:         pub,
		log:         log,
		statusEvery: statusEvery,
		now:         time.Now,
	}
}

// Published returns the number of frames handed to the publisher.
func (p *Producer) Published() int64 {
	return p.published.Load()
}

// Run samples at the pipeline's interval until ctx is done.
func (p *Producer) Run(ctx context.Context) error {
	pipeline := p.session.Pipeline()
	p.log.Info("starting device motion producer",
		zap.Stringer("pipeline", pipeline),
		zap.String("session", p.session.ID()),
	)

	if p.statusEvery > 0 {
		go p.logStatus(ctx)
	}

	err := sensors.Run(ctx, p.src, pipeline.Config().SampleInterval, pipeline, func(sensors.Reading) {
		p.publish()
	})
	if errors.Is(err, context.Canceled) {
		p.log.Info("device motion producer stopped",
			zap.Int("iteration", pipeline.Iteration()),
			zap.Int64("published", p.published.Load()),
			zap.Int64("publish_errors", p.publishErrors.Load()),
		)
		return nil
	}
	return err
}

func (p *Producer) publish() {
	if err := p.pub.Publish(p.session.Frame(p.now())); err != nil {
		p.publishErrors.Add(1)
		p.log.Warn("frame publish failed", zap.Error(err))
		return
	}
	p.published.Add(1)
}

func (p *Producer) logStatus(ctx context.Context) {
	ticker := time.NewTicker(p.statusEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.log.Info("device motion status",
				zap.String("session", p.session.ID()),
				zap.String("report", p.session.Pipeline().Status("")),
			)
		}
	}
}

// HandleControl applies a control document to the session.
func (p *Producer) HandleControl(c telemetry.Control) {
	switch c.Action {
	case telemetry.ActionReset:
		old := p.session.ID()
		id := p.session.Restart()
		p.log.Info("session restarted", zap.String("previous", old), zap.String("session", id))
	default:
		p.log.Warn("ignoring control action", zap.String("action", c.Action))
	}
}

// NewSource returns the motion source selected by cfg.
func NewSource(cfg *config.Config, log *zap.Logger) (sensors.Source, error) {
	switch cfg.MotionSource {
	case config.SourceMock:
		log.Info("using mock device motion source")
		return sensors.NewMockSource(), nil
	case config.SourceIMU:
		log.Info("using MPU9250 device motion source")
		return sensors.NewIMUSource(sensors.IMUOptions{
			SPIDevice:  cfg.IMUSPIDevice,
			CSPin:      cfg.IMUCSPin,
			AccelRange: cfg.IMUAccelRange,
			GyroRange:  cfg.IMUGyroRange,
		}, log)
	default:
		return nil, fmt.Errorf("unknown motion source %q", cfg.MotionSource)
	}
}

// NewSessionFromConfig builds the pipeline for the configured tier and
// wraps it in a fresh session.
func NewSessionFromConfig(cfg *config.Config, log *zap.Logger) (*Session, error) {
	mc, err := cfg.MotionConfig()
	if err != nil {
		return nil, err
	}
	pipeline, err := motion.NewPipeline(mc, log)
	if err != nil {
		return nil, err
	}
	return NewSession(pipeline), nil
}

// RunProducer connects to MQTT, listens for control messages and publishes
// normalized frames until ctx is done.
func RunProducer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	session, err := NewSessionFromConfig(cfg, log)
	if err != nil {
		return err
	}

	src, err := NewSource(cfg, log)
	if err != nil {
		return err
	}

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDProducer, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(telemetry.DisconnectQuiesce)

	producer := NewProducer(session, src, telemetry.NewPublisher(client, cfg.TopicMotion), cfg.StatusInterval(), log)
	if err := telemetry.SubscribeControl(client, cfg.TopicControl, log, producer.HandleControl); err != nil {
		return err
	}

	return producer.Run(ctx)
}
