// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestPipeline(t *testing.T, window int) *Pipeline {
	t.Helper()
	p, err := NewPipeline(Config{SampleInterval: 10 * time.Millisecond, WindowSize: window}, nil)
	require.NoError(t, err)
	return p
}

func TestNewPipelineRejectsBadConfig(t *testing.T) {
	_, err := NewPipeline(Config{SampleInterval: time.Second, WindowSize: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewPipeline(Config{SampleInterval: 0, WindowSize: 3}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigForTier(t *testing.T) {
	assert.Equal(t, Config{SampleInterval: time.Second / 60, WindowSize: 30}, ConfigForTier(TierCapable))
	assert.Equal(t, Config{SampleInterval: time.Second / 10, WindowSize: 5}, ConfigForTier(TierConstrained))
	assert.Equal(t, ConfigForTier(TierCapable), ConfigForTier("unknown"))

	tier, err := ParseTier(" Constrained ")
	require.NoError(t, err)
	assert.Equal(t, TierConstrained, tier)

	_, err = ParseTier("quantum")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNormalizedValueBeforeIngest(t *testing.T) {
	p := newTestPipeline(t, 4)

	assert.Equal(t, 0.0, p.NormalizedValue(AttitudeRoll))
	assert.Equal(t, 0.0, p.NormalizedValue("X"))
	r, pi, y := p.NormalizedAttitude()
	assert.Equal(t, [3]float64{0, 0, 0}, [3]float64{r, pi, y})
	assert.Empty(t, p.Channels())
	assert.Equal(t, 0, p.Iteration())
}

func TestPipelineGenericScenario(t *testing.T) {
	p := newTestPipeline(t, 2)

	p.Ingest(Sample{"X": 2})
	assert.Equal(t, 0.0, p.NormalizedValue("X"))
	assert.Equal(t, []float64{0}, p.filter.Window("X"))

	p.Ingest(Sample{"X": 5})
	assert.Equal(t, 2.0, p.Low("X"))
	assert.Equal(t, 5.0, p.High("X"))
	assert.Equal(t, []float64{1, 0}, p.filter.Window("X"))
	assert.Equal(t, 0.5, p.NormalizedValue("X"))

	p.Ingest(Sample{"X": 3})
	if diff := cmp.Diff([]float64{1.0 / 3.0, 1.0}, p.filter.Window("X"), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 2.0/3.0, p.NormalizedValue("X"), 1e-9)
	assert.Equal(t, 3.0, p.Latest("X"))
	assert.Equal(t, 3, p.Iteration())
}

func TestPipelineKnownChannels(t *testing.T) {
	p := newTestPipeline(t, 30)

	p.Ingest(Sample{
		AttitudeRoll:      0,
		AttitudePitch:     0,
		AttitudeYaw:       0,
		RotationRateX:     15,
		RotationRateY:     -30,
		RotationRateZ:     0,
		GravityX:          0,
		GravityY:          1,
		GravityZ:          -1,
		UserAccelerationX: -2,
		UserAccelerationY: 4,
		UserAccelerationZ: 0,
	})

	roll, pitch, yaw := p.NormalizedAttitude()
	assert.Equal(t, [3]float64{0.5, 0.5, 0.5}, [3]float64{roll, pitch, yaw})

	x, y, z := p.NormalizedRotationRate()
	assert.InDelta(t, 0.5, x, 1e-12)
	assert.InDelta(t, 1.0, y, 1e-12)
	assert.Equal(t, 0.0, z)

	x, y, z = p.NormalizedGravity()
	assert.Equal(t, [3]float64{0.5, 1, 0}, [3]float64{x, y, z})

	x, y, z = p.NormalizedUserAcceleration()
	assert.Equal(t, [3]float64{0.5, 1, 0}, [3]float64{x, y, z})

	assert.ElementsMatch(t, KnownChannels, p.Channels())
	assert.Equal(t, AttitudePitch, p.Channels()[0])
}

func TestPipelineMissingChannelsUntouched(t *testing.T) {
	p := newTestPipeline(t, 3)

	p.Ingest(Sample{GravityX: 1, GravityY: 0})
	p.Ingest(Sample{GravityX: -1})

	assert.Equal(t, 2, p.WindowLen(GravityX))
	assert.Equal(t, 1, p.WindowLen(GravityY))
	assert.Equal(t, 0.5, p.NormalizedValue(GravityY))
	assert.Equal(t, 0.0, p.Latest(GravityY))
	assert.Equal(t, 0.5, p.NormalizedValue(GravityX))
}

func TestPipelineWindowLengthCapped(t *testing.T) {
	p := newTestPipeline(t, 5)

	for i := 0; i < 12; i++ {
		p.Ingest(Sample{RotationRateZ: float64(i)})
		assert.LessOrEqual(t, p.WindowLen(RotationRateZ), 5)
	}
	assert.Equal(t, 5, p.State(RotationRateZ).Samples)
}

func TestPipelineSampleIsCopied(t *testing.T) {
	p := newTestPipeline(t, 3)

	s := Sample{GravityZ: -1}
	p.Ingest(s)
	s[GravityZ] = 0.75

	assert.Equal(t, -1.0, p.Latest(GravityZ))
}

func TestPipelineResetIsIdempotentReplay(t *testing.T) {
	seq := []Sample{
		{"X": 2, GravityX: 0.2, RotationRateY: 3},
		{"X": 5, GravityX: -0.4, RotationRateY: -12},
		{"X": 3, GravityX: 0.9},
		{"X": -1, RotationRateY: 7},
	}

	p := newTestPipeline(t, 3)
	for _, s := range seq {
		p.Ingest(s)
	}
	p.Reset()

	// raw buffer survives
	assert.Equal(t, -1.0, p.Latest("X"))
	assert.Equal(t, 0.0, p.Low("X"))
	assert.Equal(t, 0.0, p.High("X"))
	assert.Equal(t, 0, p.WindowLen(GravityX))
	assert.Equal(t, 0.0, p.NormalizedValue(GravityX))

	for _, s := range seq {
		p.Ingest(s)
	}

	fresh := newTestPipeline(t, 3)
	for _, s := range seq {
		fresh.Ingest(s)
	}

	if diff := cmp.Diff(fresh.Snapshot().Channels, p.Snapshot().Channels); diff != "" {
		t.Errorf("replay after reset differs (-fresh +reset):\n%s", diff)
	}
	assert.Equal(t, 8, p.Iteration())
}

func TestPipelineFault(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p, err := NewPipeline(ConfigForTier(TierConstrained), zap.New(core))
	require.NoError(t, err)

	p.Ingest(Sample{GravityX: 1})
	p.Fault(errors.New("sensor unavailable"))

	snap := p.Snapshot()
	assert.Equal(t, 2, snap.Iteration)
	assert.Equal(t, 1, snap.Faults)
	assert.Equal(t, 1.0, snap.Channels[GravityX].Normalized)
	assert.Equal(t, 1, logs.FilterMessage("device motion capture failed").Len())
}

func TestPipelineConcurrentReaders(t *testing.T) {
	p := newTestPipeline(t, 4)

	var wg sync.WaitGroup
	done := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := p.Snapshot()
				for ch, st := range snap.Channels {
					if st.Samples > 4 {
						t.Errorf("%s window holds %d values", ch, st.Samples)
					}
					if st.Low > st.High {
						t.Errorf("%s low %f above high %f", ch, st.Low, st.High)
					}
				}
				_ = p.NormalizedValue(AttitudeYaw)
				_ = p.Status("")
			}
		}()
	}

	for i := 0; i < 500; i++ {
		v := float64(i%17) - 8
		p.Ingest(Sample{AttitudeYaw: v / 4, "X": v})
		if i%50 == 0 {
			p.Reset()
		}
	}
	close(done)
	wg.Wait()

	assert.Equal(t, 500, p.Iteration())
}
