// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ChannelState is a copy of everything the pipeline knows about one channel.
type ChannelState struct {
	Category   Category `json:"category"`
	Raw        float64  `json:"raw"`
	Low        float64  `json:"low"`
	High       float64  `json:"high"`
	Normalized float64  `json:"normalized"`
	Samples    int      `json:"samples"` // values currently in the hysteresis window
}

// Snapshot is a consistent view of the pipeline taken under one read lock.
type Snapshot struct {
	Iteration int                      `json:"iteration"`
	Faults    int                      `json:"faults"`
	Channels  map[Channel]ChannelState `json:"channels"`
}

// Pipeline runs each sample through range tracking, normalization and
// hysteresis smoothing.
//
// Ingest and Fault are meant to be called by a single producer. Every other
// method may be called concurrently with them.
type Pipeline struct {
	cfg Config
	log *zap.Logger

	mu         sync.RWMutex
	buffer     SampleBuffer
	ranges     *RangeTracker
	normalizer Normalizer
	filter     *HysteresisFilter
	normalized map[Channel]float64
	ingests    int
	faults     int
}

// NewPipeline builds a pipeline for cfg. A nil log discards diagnostics.
func NewPipeline(cfg Config, log *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		cfg:        cfg,
		log:        log,
		ranges:     NewRangeTracker(),
		normalizer: NewNormalizer(log),
		filter:     NewHysteresisFilter(cfg.WindowSize),
		normalized: make(map[Channel]float64),
	}, nil
}

// Config returns the construction-time configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Ingest processes one sample. Channels absent from sample are left alone.
func (p *Pipeline) Ingest(sample Sample) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ingests++
	p.buffer.Ingest(sample)

	// ranges first: generic normalization reads the range this sample just widened
	for ch, v := range sample {
		p.ranges.Update(ch, v)
	}
	for ch, v := range sample {
		pct := p.normalizer.Normalize(ch, v, p.ranges)
		p.normalized[ch] = p.filter.Record(ch, pct)
	}
}

// Fault records a failed sensor tick. The pipeline's statistics don't change.
func (p *Pipeline) Fault(err error) {
	p.mu.Lock()
	p.faults++
	p.mu.Unlock()

	p.log.Warn("device motion capture failed", zap.Error(err))
}

// Reset clears ranges, hysteresis windows and normalized values of every
// channel. The most recent raw sample is kept.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ranges.ResetAll()
	p.filter.Reset()
	p.normalized = make(map[Channel]float64)

	p.log.Debug("device motion statistics reset", zap.Int("iteration", p.ingests+p.faults))
}

// NormalizedValue returns the smoothed percentage of ch. It is 0.0 before the
// first Ingest and for channels never observed.
func (p *Pipeline) NormalizedValue(ch Channel) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.ingests < 1 {
		return 0
	}
	return p.normalized[ch]
}

// Latest returns the most recent raw value of ch.
func (p *Pipeline) Latest(ch Channel) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.buffer.Latest(ch)
}

// Low returns the lower bound of ch since the last reset.
func (p *Pipeline) Low(ch Channel) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ranges.Low(ch)
}

// High returns the upper bound of ch since the last reset.
func (p *Pipeline) High(ch Channel) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ranges.High(ch)
}

// WindowLen returns how many values the hysteresis window of ch holds.
func (p *Pipeline) WindowLen(ch Channel) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter.Len(ch)
}

// Iteration returns the number of capture ticks seen, failed ones included.
func (p *Pipeline) Iteration() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ingests + p.faults
}

// Channels returns every channel with raw or derived state, sorted by name.
func (p *Pipeline) Channels() []Channel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return sortedChannels(p.statesLocked())
}

// State returns the state of one channel.
func (p *Pipeline) State(ch Channel) ChannelState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stateLocked(ch)
}

// Snapshot copies the state of every channel.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Snapshot{
		Iteration: p.ingests + p.faults,
		Faults:    p.faults,
		Channels:  p.statesLocked(),
	}
}

// FormatStatus renders one status line for ch, see FormatLine.
func (p *Pipeline) FormatStatus(ch Channel, label string) string {
	return FormatLine(label, p.State(ch))
}

// Status renders the full multi-line report.
func (p *Pipeline) Status(title string) string {
	return StatusReport(title, p.Snapshot())
}

func (p *Pipeline) stateLocked(ch Channel) ChannelState {
	st := ChannelState{
		Category: ch.Category(),
		Raw:      p.buffer.Latest(ch),
		Low:      p.ranges.Low(ch),
		High:     p.ranges.High(ch),
		Samples:  p.filter.Len(ch),
	}
	if p.ingests > 0 {
		st.Normalized = p.normalized[ch]
	}
	return st
}

func (p *Pipeline) statesLocked() map[Channel]ChannelState {
	out := make(map[Channel]ChannelState)
	for ch := range p.buffer.recent {
		out[ch] = p.stateLocked(ch)
	}
	for ch := range p.normalized {
		if _, ok := out[ch]; !ok {
			out[ch] = p.stateLocked(ch)
		}
	}
	return out
}

// String implements fmt.Stringer for log lines.
func (p *Pipeline) String() string {
	return fmt.Sprintf("motion pipeline (interval %s, window %d, iteration %d)",
		p.cfg.SampleInterval, p.cfg.WindowSize, p.Iteration())
}

// NormalizedAttitude returns the smoothed roll, pitch and yaw percentages.
func (p *Pipeline) NormalizedAttitude() (roll, pitch, yaw float64) {
	return p.triple(AttitudeRoll, AttitudePitch, AttitudeYaw)
}

// NormalizedRotationRate returns the smoothed x, y and z rotation rate percentages.
func (p *Pipeline) NormalizedRotationRate() (x, y, z float64) {
	return p.triple(RotationRateX, RotationRateY, RotationRateZ)
}

// NormalizedGravity returns the smoothed x, y and z gravity percentages.
func (p *Pipeline) NormalizedGravity() (x, y, z float64) {
	return p.triple(GravityX, GravityY, GravityZ)
}

// NormalizedUserAcceleration returns the smoothed x, y and z user acceleration percentages.
func (p *Pipeline) NormalizedUserAcceleration() (x, y, z float64) {
	return p.triple(UserAccelerationX, UserAccelerationY, UserAccelerationZ)
}

func (p *Pipeline) triple(a, b, c Channel) (float64, float64, float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.ingests < 1 {
		return 0, 0, 0
	}
	return p.normalized[a], p.normalized[b], p.normalized[c]
}
