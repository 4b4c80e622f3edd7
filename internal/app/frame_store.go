// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"

	"github.com/relabs-tech/device_motion/internal/telemetry"
)

// FrameStore keeps the latest frame received from the producer.
type FrameStore struct {
	mu    sync.RWMutex
	frame telemetry.Frame
	have  bool
}

// Set replaces the stored frame.
func (s *FrameStore) Set(f telemetry.Frame) {
	s.mu.Lock()
	s.frame = f
	s.have = true
	s.mu.Unlock()
}

// Latest returns the stored frame and whether one has arrived yet.
func (s *FrameStore) Latest() (telemetry.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.have
}
