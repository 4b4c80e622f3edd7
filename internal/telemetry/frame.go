// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry defines the MQTT documents exchanged between the motion
// producer and its consumers.
package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/relabs-tech/device_motion/internal/motion"
)

// Frame is one published view of a capture session's pipeline.
type Frame struct {
	SessionID string                                 `json:"session_id"`
	Time      time.Time                              `json:"time"`
	Iteration int                                    `json:"iteration"`
	Faults    int                                    `json:"faults"`
	Channels  map[motion.Channel]motion.ChannelState `json:"channels"`
}

// NewFrame wraps a pipeline snapshot taken at t.
func NewFrame(sessionID string, t time.Time, snap motion.Snapshot) Frame {
	return Frame{
		SessionID: sessionID,
		Time:      t.UTC(),
		Iteration: snap.Iteration,
		Faults:    snap.Faults,
		Channels:  snap.Channels,
	}
}

// Snapshot turns the frame back into a pipeline snapshot.
func (f Frame) Snapshot() motion.Snapshot {
	return motion.Snapshot{
		Iteration: f.Iteration,
		Faults:    f.Faults,
		Channels:  f.Channels,
	}
}

// Title is the status report heading for the frame's session.
func (f Frame) Title() string {
	if f.SessionID == "" {
		return "device motion"
	}
	id := f.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	return "device motion  [" + id + "]"
}

// Channel returns the state of ch and whether the frame carries it.
func (f Frame) Channel(ch motion.Channel) (motion.ChannelState, bool) {
	st, ok := f.Channels[ch]
	return st, ok
}

// Control actions.
const (
	ActionReset = "reset"
)

// Control asks the producer to act on its session.
type Control struct {
	Action string `json:"action"`
}

// Encode marshals a frame or control document.
func Encode(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("telemetry: encode: %w", err)
	}
	return b, nil
}

// DecodeFrame parses a frame payload.
func DecodeFrame(payload []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return Frame{}, fmt.Errorf("telemetry: decode frame: %w", err)
	}
	if f.Channels == nil {
		f.Channels = make(map[motion.Channel]motion.ChannelState)
	}
	return f, nil
}

// DecodeControl parses a control payload. Unknown actions are rejected.
func DecodeControl(payload []byte) (Control, error) {
	var c Control
	if err := json.Unmarshal(payload, &c); err != nil {
		return Control{}, fmt.Errorf("telemetry: decode control: %w", err)
	}
	c.Action = strings.ToLower(strings.TrimSpace(c.Action))
	switch c.Action {
	case ActionReset:
		return c, nil
	default:
		return Control{}, fmt.Errorf("telemetry: unknown control action %q", c.Action)
	}
}
