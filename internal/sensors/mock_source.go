// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock device-motion source that
// generates smooth changing values.
func NewMockSource() Source {
	return newMockSource(time.Now)
}

func newMockSource(now func() time.Time) *mockSource {
	return &mockSource{start: now(), now: now}
}

func (m *mockSource) Next() (Reading, error) {
	return mockReading(m.now().Sub(m.start).Seconds()), nil
}

// mockReading is a gently rocking device: attitude and rotation rate are a
// function and its derivative, gravity follows the attitude.
func mockReading(t float64) Reading {
	roll := 0.35 * math.Sin(t)
	pitch := 0.26 * math.Cos(t*0.7)
	yaw := wrapAngle(0.5 * t)

	return Reading{
		Attitude: Attitude{Roll: roll, Pitch: pitch, Yaw: yaw},
		RotationRate: Vector{
			X: 0.35 * math.Cos(t),
			Y: -0.26 * 0.7 * math.Sin(t*0.7),
			Z: 0.5,
		},
		Gravity: Vector{
			X: -math.Sin(pitch),
			Y: math.Cos(pitch) * math.Sin(roll),
			Z: math.Cos(pitch) * math.Cos(roll),
		},
		UserAcceleration: Vector{
			X: 0.20 * math.Sin(t*2.3),
			Y: 0.15 * math.Cos(t*1.9),
			Z: 0.10 * math.Sin(t*3.1),
		},
	}
}
