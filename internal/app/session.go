// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/device_motion/internal/motion"
	"github.com/relabs-tech/device_motion/internal/telemetry"
)

// Session is one measurement run: a pipeline and the ID its frames carry.
// Restart clears the statistics and starts a new run.
type Session struct {
	pipeline *motion.Pipeline

	mu      sync.RWMutex
	id      string
	started time.Time
	now     func() time.Time
}

// NewSession starts a session around p.
func NewSession(p *motion.Pipeline) *Session {
	s := &Session{pipeline: p, now: time.Now}
	s.id = uuid.NewString()
	s.started = s.now()
	return s
}

// ID returns the current session ID.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Started returns when the current session began.
func (s *Session) Started() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Pipeline returns the session's pipeline.
func (s *Session) Pipeline() *motion.Pipeline {
	return s.pipeline
}

// Restart resets the pipeline statistics and rolls the session ID.
// It returns the new ID.
func (s *Session) Restart() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pipeline.Reset()
	s.id = uuid.NewString()
	s.started = s.now()
	return s.id
}

// Frame builds a telemetry frame from the current pipeline state.
func (s *Session) Frame(now time.Time) telemetry.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return telemetry.NewFrame(s.id, now, s.pipeline.Snapshot())
}
