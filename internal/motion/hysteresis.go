// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"gonum.org/v1/gonum/stat"
)

// window is the rolling history of one channel, newest first, together with
// its current mean.
type window struct {
	values  []float64
	average float64
}

// HysteresisFilter smooths percentages with a fixed-capacity rolling average
// per channel.
type HysteresisFilter struct {
	size    int
	windows map[Channel]*window
}

// NewHysteresisFilter returns a filter keeping at most size values per channel.
// size below 1 is treated as 1.
func NewHysteresisFilter(size int) *HysteresisFilter {
	if size < 1 {
		size = 1
	}
	return &HysteresisFilter{
		size:    size,
		windows: make(map[Channel]*window),
	}
}

// Size returns the window capacity.
func (f *HysteresisFilter) Size() int {
	return f.size
}

// Record prepends pct to the window of ch, drops the oldest value once the
// window is over capacity, and returns the mean of what is left.
//
// A window that is not full yet is averaged over the values it has.
func (f *HysteresisFilter) Record(ch Channel, pct float64) float64 {
	w, ok := f.windows[ch]
	if !ok {
		w = &window{values: make([]float64, 0, f.size+1)}
		f.windows[ch] = w
	}

	w.values = append(w.values, 0)
	copy(w.values[1:], w.values)
	w.values[0] = pct
	if len(w.values) > f.size {
		w.values = w.values[:f.size]
	}

	w.average = stat.Mean(w.values, nil)
	return w.average
}

// Average returns the current mean for ch, or 0.0 if nothing was recorded.
func (f *HysteresisFilter) Average(ch Channel) float64 {
	if w, ok := f.windows[ch]; ok {
		return w.average
	}
	return 0
}

// Window returns a copy of the window of ch, newest first.
func (f *HysteresisFilter) Window(ch Channel) []float64 {
	w, ok := f.windows[ch]
	if !ok {
		return nil
	}
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Len returns the number of values in the window of ch.
func (f *HysteresisFilter) Len(ch Channel) int {
	if w, ok := f.windows[ch]; ok {
		return len(w.values)
	}
	return 0
}

// Reset drops every window.
func (f *HysteresisFilter) Reset() {
	f.windows = make(map[Channel]*window)
}
