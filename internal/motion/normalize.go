// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math"

	"go.uber.org/zap"
)

// Relative maxima per category. Readings may go past 100% under extra effort.
const (
	MaxAttitude         = math.Pi
	MaxRotationRate     = 30.0
	MaxGravity          = 1.0
	MaxUserAcceleration = 4.0
)

// Bounds exposes the observed range of a channel. *RangeTracker implements it.
type Bounds interface {
	Low(ch Channel) float64
	High(ch Channel) float64
}

// Normalizer maps raw values to unclamped percentages (1.0 == 100%).
type Normalizer struct {
	log *zap.Logger
}

// NewNormalizer returns a Normalizer that reports out-of-range results to log.
// A nil log discards them.
func NewNormalizer(log *zap.Logger) Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return Normalizer{log: log}
}

// Normalize returns the percentage of raw for ch.
//
//   - attitude:          (raw + π) / 2π
//   - rotation rate:     |raw| / 30
//   - gravity:           (raw + 1) / 2
//   - user acceleration: |raw| / 4
//   - anything else:     position of raw inside the channel's observed range,
//     0.0 while that range has zero width
//
// The result is not clamped. A negative result points at a bad range or
// category setup upstream; it is logged and returned as is.
func (n Normalizer) Normalize(ch Channel, raw float64, bounds Bounds) float64 {
	var pct float64

	switch ch.Category() {
	case CategoryAttitude:
		pct = (raw + MaxAttitude) / (MaxAttitude * 2)
	case CategoryRotationRate:
		pct = math.Abs(raw) / MaxRotationRate
	case CategoryGravity:
		pct = (raw + MaxGravity) / (MaxGravity * 2)
	case CategoryUserAcceleration:
		pct = math.Abs(raw) / MaxUserAcceleration
	default:
		low, high := bounds.Low(ch), bounds.High(ch)
		if high-low > 0 {
			pct = (raw - low) / (high - low)
		}
	}

	if pct < 0 && n.log != nil {
		n.log.Warn("normalized percentage out of range",
			zap.String("channel", string(ch)),
			zap.Float64("raw", raw),
			zap.Float64("percentage", pct),
		)
	}
	return pct
}
