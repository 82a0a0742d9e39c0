// Package export renders raw and decoded signals for consumption outside
// the decoder: CSV rows, PNG and HTML timelines, and timing summaries.
package export

import (
	"github.com/banshee-data/irdump/internal/irdecode"
	"github.com/banshee-data/irdump/internal/units"
)

// Timeline geometry shared by the PNG and HTML renderers.
const (
	TimelineYMax = 300
	PulseHeight  = 200
	PauseHeight  = 20
)

// Span is one rounded duration laid out on the time axis.
type Span struct {
	Start     uint64
	End       uint64
	Component irdecode.Component
}

// Height is the bar height of the span on the timeline.
func (s Span) Height() float64 {
	if s.Component == irdecode.Pulse {
		return PulseHeight
	}
	return PauseHeight
}

// Timeline lays data out end to end after rounding every duration to the
// short unit. Even indices are pulses, odd indices pauses.
func Timeline(data []uint32) []Span {
	spans := make([]Span, len(data))
	var x uint64
	for i, d := range data {
		c := irdecode.Pulse
		if i&1 == 1 {
			c = irdecode.Pause
		}
		end := x + uint64(units.RoundTo(d, units.ShortMicros))
		spans[i] = Span{Start: x, End: end, Component: c}
		x = end
	}
	return spans
}

// XLimit is the right edge of the time axis: the rounded signal length, but
// never less than the plot floor so short signals share one scale.
func XLimit(spans []Span) uint64 {
	floor := uint64(units.RoundTo(units.PlotFloorMicros, units.ShortMicros))
	if len(spans) == 0 {
		return floor
	}
	return max(spans[len(spans)-1].End, floor)
}
