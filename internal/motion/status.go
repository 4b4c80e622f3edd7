// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"
	"math"
	"strings"
)

// Field is one labelled line of a status report.
type Field struct {
	Label   string
	Channel Channel
}

// Section groups the fields of one category under a heading.
type Section struct {
	Title    string
	Category Category
	Fields   []Field
}

// Sections is the layout of the status report.
var Sections = []Section{
	{
		Title:    "attitude  (radians)",
		Category: CategoryAttitude,
		Fields: []Field{
			{"roll ", AttitudeRoll},
			{"pitch", AttitudePitch},
			{"yaw  ", AttitudeYaw},
		},
	},
	{
		Title:    "rotation rate  (radians/sec)",
		Category: CategoryRotationRate,
		Fields: []Field{
			{"x    ", RotationRateX},
			{"y    ", RotationRateY},
			{"z    ", RotationRateZ},
		},
	},
	{
		Title:    "gravity  (gravitational force)",
		Category: CategoryGravity,
		Fields: []Field{
			{"x    ", GravityX},
			{"y    ", GravityY},
			{"z    ", GravityZ},
		},
	},
	{
		Title:    "acceleration rate  (added grav. force)",
		Category: CategoryUserAcceleration,
		Fields: []Field{
			{"x    ", UserAccelerationX},
			{"y    ", UserAccelerationY},
			{"z    ", UserAccelerationZ},
		},
	},
}

// SectionFor returns the report section of category.
func SectionFor(category Category) (Section, bool) {
	for _, s := range Sections {
		if s.Category == category {
			return s, true
		}
	}
	return Section{}, false
}

// SignString returns "+", "-" or " " for positive, negative and zero values.
func SignString(v float64) string {
	switch {
	case v > 0:
		return "+"
	case v < 0:
		return "-"
	default:
		return " "
	}
}

// FormatLine renders one channel as
//
//	<label>  <pct>%   <sign> <|raw|>  (<low>, <high>)
//
// with the percentage at zero decimals, the raw magnitude at three and the
// range at one.
func FormatLine(label string, st ChannelState) string {
	return fmt.Sprintf("%s  %3.0f%%   %s %1.3f  (%1.1f, %1.1f)",
		label,
		st.Normalized*100.0,
		SignString(st.Raw), math.Abs(st.Raw),
		st.Low, st.High,
	)
}

// StatusReport renders snap as a multi-line report: a header with the title
// and iteration count followed by one section per category.
func StatusReport(title string, snap Snapshot) string {
	var b strings.Builder

	if title == "" {
		title = "device motion"
	}
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "    iteration    %d\n", snap.Iteration)
	if snap.Faults > 0 {
		fmt.Fprintf(&b, "    faults       %d\n", snap.Faults)
	}

	for _, s := range Sections {
		b.WriteString("\n")
		b.WriteString(s.Title)
		b.WriteString("\n")
		for _, f := range s.Fields {
			b.WriteString("\t")
			b.WriteString(FormatLine(f.Label, snap.Channels[f.Channel]))
			b.WriteString("\n")
		}
	}
	return b.String()
}
