// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors produces device-motion readings from a mock generator or
// an MPU9250 IMU and drives them into a motion pipeline.
package sensors

import (
	"math"

	"github.com/relabs-tech/device_motion/internal/motion"
)

// Vector is a three-axis value.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * k.
func (v Vector) Scale(k float64) Vector {
	return Vector{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Norm returns the length of v.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Attitude is the device orientation in radians.
type Attitude struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Reading is one device-motion capture.
//
//	Attitude          radians
//	RotationRate      radians/sec
//	Gravity           g
//	UserAcceleration  g, gravity removed
type Reading struct {
	Attitude         Attitude `json:"attitude"`
	RotationRate     Vector   `json:"rotation_rate"`
	Gravity          Vector   `json:"gravity"`
	UserAcceleration Vector   `json:"user_acceleration"`
}

// Sample flattens the reading into the twelve device-motion channels.
func (r Reading) Sample() motion.Sample {
	return motion.Sample{
		motion.AttitudeRoll:  r.Attitude.Roll,
		motion.AttitudePitch: r.Attitude.Pitch,
		motion.AttitudeYaw:   r.Attitude.Yaw,

		motion.RotationRateX: r.RotationRate.X,
		motion.RotationRateY: r.RotationRate.Y,
		motion.RotationRateZ: r.RotationRate.Z,

		motion.GravityX: r.Gravity.X,
		motion.GravityY: r.Gravity.Y,
		motion.GravityZ: r.Gravity.Z,

		motion.UserAccelerationX: r.UserAcceleration.X,
		motion.UserAccelerationY: r.UserAcceleration.Y,
		motion.UserAccelerationZ: r.UserAcceleration.Z,
	}
}

// Source is anything that can provide device-motion readings over time.
type Source interface {
	Next() (Reading, error)
}

// wrapAngle maps a to [-π, π].
func wrapAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}
