// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeTrackerFirstObservation(t *testing.T) {
	rt := NewRangeTracker()

	assert.Equal(t, 0.0, rt.Low("X"))
	assert.Equal(t, 0.0, rt.High("X"))
	_, ok := rt.Range("X")
	assert.False(t, ok)

	rt.Update("X", 2.5)
	r, ok := rt.Range("X")
	assert.True(t, ok)
	assert.Equal(t, Range{Low: 2.5, High: 2.5}, r)
	assert.Equal(t, 0.0, r.Width())
}

func TestRangeTrackerWidens(t *testing.T) {
	rt := NewRangeTracker()

	for i, tc := range []struct {
		value     float64
		low, high float64
	}{
		{value: 2.0, low: 2.0, high: 2.0},
		{value: 5.0, low: 2.0, high: 5.0},
		{value: 3.0, low: 2.0, high: 5.0},
		{value: -1.0, low: -1.0, high: 5.0},
		{value: 5.0, low: -1.0, high: 5.0},
		{value: 7.5, low: -1.0, high: 7.5},
	} {
		rt.Update("X", tc.value)
		assert.Equal(t, tc.low, rt.Low("X"), "step %d low", i)
		assert.Equal(t, tc.high, rt.High("X"), "step %d high", i)
	}
}

func TestRangeTrackerKeepsExtremes(t *testing.T) {
	rt := NewRangeTracker()
	rnd := rand.New(rand.NewSource(42))

	min, max := 0.0, 0.0
	for i := 0; i < 1000; i++ {
		v := rnd.NormFloat64() * 10
		if i == 0 || v < min {
			min = v
		}
		if i == 0 || v > max {
			max = v
		}
		rt.Update(GravityX, v)

		assert.LessOrEqual(t, rt.Low(GravityX), v)
		assert.GreaterOrEqual(t, rt.High(GravityX), v)
	}
	assert.Equal(t, min, rt.Low(GravityX))
	assert.Equal(t, max, rt.High(GravityX))
}

func TestRangeTrackerResetAll(t *testing.T) {
	rt := NewRangeTracker()
	rt.Update("A", 1)
	rt.Update("B", 2)
	assert.Equal(t, 2, rt.Len())

	rt.ResetAll()
	assert.Equal(t, 0, rt.Len())
	assert.Equal(t, 0.0, rt.High("B"))

	rt.Update("B", -4)
	assert.Equal(t, Range{Low: -4, High: -4}, func() Range { r, _ := rt.Range("B"); return r }())
}
