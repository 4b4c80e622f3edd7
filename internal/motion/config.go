// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by NewPipeline for unusable settings.
var ErrInvalidConfig = errors.New("invalid motion config")

// Tier selects sampling settings by hardware capability.
type Tier string

const (
	// TierCapable is for current hardware: 60 Hz, 30-value window.
	TierCapable Tier = "capable"
	// TierConstrained is for older/slower hardware: 10 Hz, 5-value window.
	TierConstrained Tier = "constrained"
)

const (
	capableInterval     = time.Second / 60
	capableWindowSize   = 30
	constrainedInterval = time.Second / 10
	constrainedWindow   = 5
)

// ParseTier maps "capable" / "constrained" (any case) to a Tier.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(s))); t {
	case TierCapable, TierConstrained:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown hardware tier %q", ErrInvalidConfig, s)
	}
}

// Config is fixed when a pipeline is built.
type Config struct {
	// SampleInterval is the native interval the sensor source is driven at.
	SampleInterval time.Duration
	// WindowSize is the hysteresis window capacity.
	WindowSize int
}

// ConfigForTier returns the sampling settings for tier. Unknown tiers get the
// capable settings.
func ConfigForTier(tier Tier) Config {
	if tier == TierConstrained {
		return Config{SampleInterval: constrainedInterval, WindowSize: constrainedWindow}
	}
	return Config{SampleInterval: capableInterval, WindowSize: capableWindowSize}
}

// Validate reports settings a pipeline can't run with.
func (c Config) Validate() error {
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window size must be at least 1, got %d", ErrInvalidConfig, c.WindowSize)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("%w: sample interval must be positive, got %s", ErrInvalidConfig, c.SampleInterval)
	}
	return nil
}
