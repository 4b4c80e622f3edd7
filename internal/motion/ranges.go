// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// Range is the observed (low, high) of one channel since the last reset.
type Range struct {
	Low  float64
	High float64
}

// Width returns High - Low.
func (r Range) Width() float64 {
	return r.High - r.Low
}

// RangeTracker keeps a running Range per channel.
type RangeTracker struct {
	ranges map[Channel]*Range
}

// NewRangeTracker returns an empty tracker.
func NewRangeTracker() *RangeTracker {
	return &RangeTracker{ranges: make(map[Channel]*Range)}
}

// Update widens the range of ch with value.
//
// The first observation sets both bounds. After that a single else-if chain
// runs: a value below low never gets compared against high in the same call.
func (t *RangeTracker) Update(ch Channel, value float64) {
	r, ok := t.ranges[ch]
	if !ok {
		t.ranges[ch] = &Range{Low: value, High: value}
		return
	}
	if value < r.Low {
		r.Low = value
	} else if value > r.High {
		r.High = value
	}
}

// Range returns the range of ch and whether ch has been observed.
func (t *RangeTracker) Range(ch Channel) (Range, bool) {
	r, ok := t.ranges[ch]
	if !ok {
		return Range{}, false
	}
	return *r, true
}

// Low returns the lower bound of ch, or 0.0 if unseen.
func (t *RangeTracker) Low(ch Channel) float64 {
	r, _ := t.Range(ch)
	return r.Low
}

// High returns the upper bound of ch, or 0.0 if unseen.
func (t *RangeTracker) High(ch Channel) float64 {
	r, _ := t.Range(ch)
	return r.High
}

// Len returns the number of tracked channels.
func (t *RangeTracker) Len() int {
	return len(t.ranges)
}

// ResetAll forgets every tracked channel.
func (t *RangeTracker) ResetAll() {
	t.ranges = make(map[Channel]*Range)
}
