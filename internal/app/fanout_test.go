// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, c <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-c:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestDynamicFanOutCopiesToAllOutputs(t *testing.T) {
	in := make(chan int, 4)
	f := NewDynamicFanOut[int](in)

	idA, a, err := f.SpawnOutput()
	require.NoError(t, err)
	idB, b, err := f.SpawnOutput()
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, f.Outputs())

	in <- 7
	assert.Equal(t, 7, receive(t, a))
	assert.Equal(t, 7, receive(t, b))

	require.NoError(t, f.DespawnOutput(idA))
	_, ok := <-a
	assert.False(t, ok)
	assert.Error(t, f.DespawnOutput(idA))

	in <- 8
	assert.Equal(t, 8, receive(t, b))
}

func TestDynamicFanOutDropsForSlowOutput(t *testing.T) {
	in := make(chan int) // outputs get one slot
	f := NewDynamicFanOut[int](in)

	_, slow, err := f.SpawnOutput()
	require.NoError(t, err)

	in <- 1
	in <- 2
	in <- 3
	require.Eventually(t, func() bool { return f.Dropped() == 2 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, 1, receive(t, slow))
}

func TestDynamicFanOutClosesOutputs(t *testing.T) {
	in := make(chan int, 1)
	f := NewDynamicFanOut[int](in)

	_, out, err := f.SpawnOutput()
	require.NoError(t, err)

	close(in)
	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("output not closed")
	}

	require.Eventually(t, func() bool {
		_, _, err := f.SpawnOutput()
		return err != nil
	}, 2*time.Second, time.Millisecond)
}
