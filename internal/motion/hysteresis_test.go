// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestHysteresisNewestFirst(t *testing.T) {
	f := NewHysteresisFilter(3)

	assert.Equal(t, 0.2, f.Record("X", 0.2))
	assert.InDelta(t, 0.3, f.Record("X", 0.4), 1e-12)
	assert.InDelta(t, 0.4, f.Record("X", 0.6), 1e-12)
	assert.Equal(t, []float64{0.6, 0.4, 0.2}, f.Window("X"))

	// oldest value (0.2) falls out
	assert.InDelta(t, 0.6, f.Record("X", 0.8), 1e-12)
	assert.Equal(t, []float64{0.8, 0.6, 0.4}, f.Window("X"))
	assert.InDelta(t, 0.6, f.Average("X"), 1e-12)
}

func TestHysteresisLengthNeverExceedsSize(t *testing.T) {
	for _, size := range []int{1, 2, 5, 30} {
		f := NewHysteresisFilter(size)
		for i := 0; i < size+7; i++ {
			f.Record(GravityX, float64(i))
			assert.LessOrEqual(t, f.Len(GravityX), size)
		}
		assert.Equal(t, size, f.Len(GravityX))
	}
}

func TestHysteresisPartialWindowAverage(t *testing.T) {
	f := NewHysteresisFilter(30)

	f.Record("X", 1.0)
	avg := f.Record("X", 0.0)
	assert.Equal(t, 0.5, avg)
	assert.Equal(t, 2, f.Len("X"))
}

func TestHysteresisWindowIsCopy(t *testing.T) {
	f := NewHysteresisFilter(2)
	f.Record("X", 1)

	w := f.Window("X")
	w[0] = 99
	assert.Equal(t, []float64{1}, f.Window("X"))
	assert.Nil(t, f.Window("unknown"))
}

func TestHysteresisReset(t *testing.T) {
	f := NewHysteresisFilter(4)
	f.Record("A", 0.5)
	f.Record("B", 0.7)

	f.Reset()
	assert.Equal(t, 0, f.Len("A"))
	assert.Equal(t, 0.0, f.Average("B"))

	f.Record("A", 0.1)
	if diff := cmp.Diff([]float64{0.1}, f.Window("A"), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
}

func TestHysteresisMinimumSize(t *testing.T) {
	f := NewHysteresisFilter(0)
	assert.Equal(t, 1, f.Size())

	f.Record("X", 0.3)
	f.Record("X", 0.9)
	assert.Equal(t, []float64{0.9}, f.Window("X"))
}
