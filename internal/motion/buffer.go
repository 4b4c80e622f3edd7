// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

// SampleBuffer holds the most recent raw sample. Nothing older is kept.
type SampleBuffer struct {
	recent Sample
}

// Ingest replaces the whole raw mapping with a copy of sample.
func (b *SampleBuffer) Ingest(sample Sample) {
	b.recent = sample.Clone()
}

// Latest returns the last raw value for ch, or 0.0 if it was never observed.
func (b *SampleBuffer) Latest(ch Channel) float64 {
	return b.recent[ch]
}

// Has reports whether ch is part of the most recent sample.
func (b *SampleBuffer) Has(ch Channel) bool {
	_, ok := b.recent[ch]
	return ok
}

// Snapshot returns a copy of the most recent sample.
func (b *SampleBuffer) Snapshot() Sample {
	return b.recent.Clone()
}
