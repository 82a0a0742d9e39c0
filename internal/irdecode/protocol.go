// Package irdecode demodulates raw IR pulse/pause timings into bit packets.
//
// Decoding happens in two steps. Classify quantises every duration onto the
// protocol's timing grid and tags it Pulse or Pause by index parity. The
// packet grammar then consumes the classified slots:
//
//	dump     := dumpStart packet+
//	dumpStart:= +short -pause(> 26 units)
//	packet   := leader bit+ end
//	leader   := +pulse([4,7) units) -pause([15,20) units)
//	bit      := +short -short (0) | +short -long (1)
//	end      := +short <end of input> | +short -pause([4,7) units)
//
// Bits arrive least significant first and are stored reversed, so the last
// bit received is Packet.Bits[0].
package irdecode

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/irdump/internal/units"
)

// UnitRange is a half-open range [Min, Max) of whole timing units.
type UnitRange struct {
	Min uint32
	Max uint32
}

// Contains reports whether Min <= n < Max.
func (r UnitRange) Contains(n uint32) bool {
	return n >= r.Min && n < r.Max
}

func (r UnitRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Min, r.Max)
}

// Protocol holds the calibration of one remote family. All thresholds are
// expressed in whole multiples of UnitMicros, compared against the original
// (unrounded) duration divided by UnitMicros.
type Protocol struct {
	UnitMicros        uint32    // short pulse/pause and rounding grid
	LongUnits         uint32    // a long pause rounds to LongUnits*UnitMicros
	DumpStartMinUnits uint32    // dump start pause must span at least this many units
	LeaderPulseUnits  UnitRange // packet leader mark
	LeaderPauseUnits  UnitRange // packet leader space
	GapPauseUnits     UnitRange // pause between packet end and the next leader
}

// DefaultProtocol returns the calibration of the Samsung-style remotes the
// dump format was first captured from.
func DefaultProtocol() Protocol {
	return Protocol{
		UnitMicros:        units.ShortMicros,
		LongUnits:         3,
		DumpStartMinUnits: 27,
		LeaderPulseUnits:  UnitRange{Min: 4, Max: 7},
		LeaderPauseUnits:  UnitRange{Min: 15, Max: 20},
		GapPauseUnits:     UnitRange{Min: 4, Max: 7},
	}
}

// ShortMicros is the nominal duration of a short slot.
func (p Protocol) ShortMicros() uint32 {
	return p.UnitMicros
}

// LongMicros is the nominal duration of a long slot.
func (p Protocol) LongMicros() uint32 {
	return p.UnitMicros * p.LongUnits
}

// Validate checks that the calibration can classify and decode anything.
func (p Protocol) Validate() error {
	var errs []error
	if p.UnitMicros == 0 {
		errs = append(errs, errors.New("unit_micros must be positive"))
	}
	if p.LongUnits < 2 {
		errs = append(errs, fmt.Errorf("long_units must be at least 2, got %d", p.LongUnits))
	}
	if uint64(p.UnitMicros)*uint64(p.LongUnits) > math.MaxUint32 {
		errs = append(errs, fmt.Errorf("unit_micros * long_units must fit in 32 bits, got %d * %d", p.UnitMicros, p.LongUnits))
	}
	if p.DumpStartMinUnits == 0 {
		errs = append(errs, errors.New("dump_start_min_units must be positive"))
	}
	for _, r := range []struct {
		name string
		r    UnitRange
	}{
		{"leader_pulse_units", p.LeaderPulseUnits},
		{"leader_pause_units", p.LeaderPauseUnits},
		{"gap_pause_units", p.GapPauseUnits},
	} {
		if r.r.Min >= r.r.Max {
			errs = append(errs, fmt.Errorf("%s %s is empty", r.name, r.r))
		}
	}
	return errors.Join(errs...)
}
