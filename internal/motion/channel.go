// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motion turns raw device-motion samples into smoothed, normalized
// per-axis percentages.
package motion

import (
	"sort"
	"strings"
)

// Channel names one scalar sensor axis, e.g. "GRAVITY_X".
type Channel string

// Category groups channels that share a normalization rule.
type Category string

const (
	CategoryAttitude         Category = "ATTITUDE"
	CategoryRotationRate     Category = "ROTATION_RATE"
	CategoryGravity          Category = "GRAVITY"
	CategoryUserAcceleration Category = "USER_ACCELERATION"
	CategoryOther            Category = "OTHER"
)

const (
	AttitudeRoll  Channel = "ATTITUDE_ROLL"
	AttitudePitch Channel = "ATTITUDE_PITCH"
	AttitudeYaw   Channel = "ATTITUDE_YAW"

	RotationRateX Channel = "ROTATION_RATE_X"
	RotationRateY Channel = "ROTATION_RATE_Y"
	RotationRateZ Channel = "ROTATION_RATE_Z"

	GravityX Channel = "GRAVITY_X"
	GravityY Channel = "GRAVITY_Y"
	GravityZ Channel = "GRAVITY_Z"

	UserAccelerationX Channel = "USER_ACCELERATION_X"
	UserAccelerationY Channel = "USER_ACCELERATION_Y"
	UserAccelerationZ Channel = "USER_ACCELERATION_Z"
)

// KnownChannels lists the twelve device-motion axes in report order.
var KnownChannels = []Channel{
	AttitudeRoll, AttitudePitch, AttitudeYaw,
	RotationRateX, RotationRateY, RotationRateZ,
	GravityX, GravityY, GravityZ,
	UserAccelerationX, UserAccelerationY, UserAccelerationZ,
}

// prefix order matters only if one category name were a prefix of another;
// none currently is.
var categoryPrefixes = []Category{
	CategoryAttitude,
	CategoryRotationRate,
	CategoryGravity,
	CategoryUserAcceleration,
}

// Category returns the category selected by the channel's name prefix.
// Channels that match no known prefix are CategoryOther.
func (c Channel) Category() Category {
	for _, p := range categoryPrefixes {
		if strings.HasPrefix(string(c), string(p)) {
			return p
		}
	}
	return CategoryOther
}

// ParseCategory maps a name such as "gravity" to its Category.
func ParseCategory(s string) (Category, bool) {
	upper := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, p := range categoryPrefixes {
		if upper == p {
			return p, true
		}
	}
	if upper == CategoryOther {
		return CategoryOther, true
	}
	return "", false
}

// ChannelsOf returns the known channels belonging to category, in report order.
func ChannelsOf(category Category) []Channel {
	var out []Channel
	for _, ch := range KnownChannels {
		if ch.Category() == category {
			out = append(out, ch)
		}
	}
	return out
}

// Sample is one atomic capture: raw value per channel.
type Sample map[Channel]float64

// Clone returns an independent copy of the sample.
func (s Sample) Clone() Sample {
	out := make(Sample, len(s))
	for ch, v := range s {
		out[ch] = v
	}
	return out
}

// Channels returns the sample's channels sorted by name.
func (s Sample) Channels() []Channel {
	return sortedChannels(s)
}

func sortedChannels[V any](m map[Channel]V) []Channel {
	out := make([]Channel, 0, len(m))
	for ch := range m {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
