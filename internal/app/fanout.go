// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"sync"
)

// DynamicFanOut copies every value from one input channel to a changing
// set of outputs. A slow output misses values instead of stalling the rest.
type DynamicFanOut[T any] struct {
	input    <-chan T
	inputCap int

	mutex   sync.Mutex
	closed  bool
	nextID  int64
	outputs map[int64]chan T
	dropped int64
}

// NewDynamicFanOut starts copying from input. Outputs are closed once input is.
func NewDynamicFanOut[T any](input <-chan T) *DynamicFanOut[T] {
	f := &DynamicFanOut[T]{
		input:    input,
		inputCap: cap(input),
		outputs:  make(map[int64]chan T),
	}
	go f.run()
	return f
}

func (f *DynamicFanOut[T]) run() {
	for e := range f.input {
		f.mutex.Lock()
		for _, o := range f.outputs {
			select {
			case o <- e:
			default:
				f.dropped++
			}
		}
		f.mutex.Unlock()
	}

	f.mutex.Lock()
	f.closed = true
	for id, o := range f.outputs {
		close(o)
		delete(f.outputs, id)
	}
	f.mutex.Unlock()
}

// SpawnOutput creates a new output channel and its ID for later despawning.
// Outputs are buffered like the input, with at least one slot.
func (f *DynamicFanOut[T]) SpawnOutput() (int64, <-chan T, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.closed {
		return 0, nil, fmt.Errorf("input channel is closed")
	}

	ocap := f.inputCap
	if ocap == 0 {
		ocap = 1
	}
	id := f.nextID
	f.nextID++
	f.outputs[id] = make(chan T, ocap)
	return id, f.outputs[id], nil
}

// DespawnOutput removes and closes the output channel with the given ID.
func (f *DynamicFanOut[T]) DespawnOutput(id int64) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	c, ok := f.outputs[id]
	if !ok {
		return fmt.Errorf("output id %d not found", id)
	}
	close(c)
	delete(f.outputs, id)
	return nil
}

// Outputs returns the number of live outputs.
func (f *DynamicFanOut[T]) Outputs() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.outputs)
}

// Dropped returns how many deliveries were skipped for full outputs.
func (f *DynamicFanOut[T]) Dropped() int64 {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.dropped
}
