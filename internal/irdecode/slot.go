package irdecode

import (
	"fmt"

	"github.com/banshee-data/irdump/internal/units"
)

// DurationClass is the symbolic length band of one duration.
type DurationClass int

const (
	Short DurationClass = iota
	Long
	Unusual
)

func (c DurationClass) String() string {
	switch c {
	case Short:
		return "short"
	case Long:
		return "long"
	case Unusual:
		return "unusual"
	default:
		return fmt.Sprintf("DurationClass(%d)", int(c))
	}
}

// Component tells whether a slot is a carrier burst or the gap after it.
type Component int

const (
	Pulse Component = iota
	Pause
)

func (c Component) String() string {
	if c == Pulse {
		return "pulse"
	}
	return "pause"
}

// TimeSlot is one classified duration. Micros carries the original value
// for Unusual slots and is zero otherwise.
type TimeSlot struct {
	Class     DurationClass
	Component Component
	Micros    uint32
}

func ShortPulse() TimeSlot { return TimeSlot{Class: Short, Component: Pulse} }
func ShortPause() TimeSlot { return TimeSlot{Class: Short, Component: Pause} }
func LongPulse() TimeSlot  { return TimeSlot{Class: Long, Component: Pulse} }
func LongPause() TimeSlot  { return TimeSlot{Class: Long, Component: Pause} }

func UnusualPulse(us uint32) TimeSlot {
	return TimeSlot{Class: Unusual, Component: Pulse, Micros: us}
}

func UnusualPause(us uint32) TimeSlot {
	return TimeSlot{Class: Unusual, Component: Pause, Micros: us}
}

// String renders the slot as +short, -long, +2972 and so on.
func (s TimeSlot) String() string {
	sign := "+"
	if s.Component == Pause {
		sign = "-"
	}
	if s.Class == Unusual {
		return fmt.Sprintf("%s%d", sign, s.Micros)
	}
	return sign + s.Class.String()
}

// Classify converts a raw duration sequence into equally many slots. Even
// indices are pulses, odd indices pauses. Each duration is rounded to the
// nearest UnitMicros; exactly one unit is Short, exactly LongUnits units is
// Long, and anything else is Unusual with the unrounded duration kept.
func (p Protocol) Classify(data []uint32) []TimeSlot {
	short := p.ShortMicros()
	long := p.LongMicros()

	slots := make([]TimeSlot, len(data))
	for i, d := range data {
		component := Pulse
		if i&1 == 1 {
			component = Pause
		}
		switch units.RoundTo(d, p.UnitMicros) {
		case short:
			slots[i] = TimeSlot{Class: Short, Component: component}
		case long:
			slots[i] = TimeSlot{Class: Long, Component: component}
		default:
			slots[i] = TimeSlot{Class: Unusual, Component: component, Micros: d}
		}
	}
	return slots
}
