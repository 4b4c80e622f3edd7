// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"
)

// DefaultGravityAlpha is the weight of a new accelerometer sample in the
// gravity low-pass filter.
const DefaultGravityAlpha = 0.1

// MotionEstimator derives a full Reading from accelerometer (g) and
// gyroscope (rad/s) data.
//
// Gravity is a low-pass of the accelerometer and user acceleration is what
// remains. Roll and pitch come from the gravity tilt:
//
//	roll  = atan2(gy, gz)
//	pitch = atan2(-gx, sqrt(gy² + gz²))
//
// Yaw integrates the z rotation rate and drifts; there is no magnetometer.
type MotionEstimator struct {
	alpha   float64
	gravity Vector
	yaw     float64
	last    time.Time
	primed  bool
}

// NewMotionEstimator returns an estimator with the given gravity filter
// weight. Values outside (0, 1] fall back to DefaultGravityAlpha.
func NewMotionEstimator(alpha float64) *MotionEstimator {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultGravityAlpha
	}
	return &MotionEstimator{alpha: alpha}
}

// Update folds one accelerometer/gyroscope pair taken at t into the estimate.
func (e *MotionEstimator) Update(accel, gyro Vector, t time.Time) Reading {
	if !e.primed {
		e.gravity = accel
		e.primed = true
	} else {
		e.gravity = e.gravity.Scale(1 - e.alpha).Add(accel.Scale(e.alpha))
		if dt := t.Sub(e.last).Seconds(); dt > 0 {
			e.yaw = wrapAngle(e.yaw + gyro.Z*dt)
		}
	}
	e.last = t

	g := e.gravity
	return Reading{
		Attitude: Attitude{
			Roll:  math.Atan2(g.Y, g.Z),
			Pitch: math.Atan2(-g.X, math.Sqrt(g.Y*g.Y+g.Z*g.Z)),
			Yaw:   e.yaw,
		},
		RotationRate:     gyro,
		Gravity:          g,
		UserAcceleration: accel.Sub(g),
	}
}

// Reset forgets the gravity estimate and the integrated yaw.
func (e *MotionEstimator) Reset() {
	*e = MotionEstimator{alpha: e.alpha}
}
