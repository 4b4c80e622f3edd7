// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"fmt"
	"time"

	"github.com/relabs-tech/device_motion/internal/motion"
)

// Sink consumes captures. *motion.Pipeline is a Sink.
type Sink interface {
	Ingest(motion.Sample)
	Fault(error)
}

// Capture reads one reading from src into sink. A failed read is reported
// to sink.Fault and nothing is ingested.
func Capture(src Source, sink Sink) (Reading, bool) {
	r, err := src.Next()
	if err != nil {
		sink.Fault(err)
		return Reading{}, false
	}
	sink.Ingest(r.Sample())
	return r, true
}

// Run captures from src every interval until ctx is done and then returns
// ctx.Err(). Each successful reading is also passed to onReading when it is
// non-nil.
func Run(ctx context.Context, src Source, interval time.Duration, sink Sink, onReading func(Reading)) error {
	if interval <= 0 {
		return fmt.Errorf("sampler: interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if r, ok := Capture(src, sink); ok && onReading != nil {
				onReading(r)
			}
		}
	}
}
