package irdecode

import (
	"slices"

	"github.com/banshee-data/irdump/internal/units"
)

// DecodeSlots runs the packet grammar over a classified slot sequence. The
// whole sequence must be consumed; the first rule that fails aborts with a
// *DecodeError.
func (p Protocol) DecodeSlots(slots []TimeSlot) ([]Packet, error) {
	g := grammar{p: p, total: len(slots)}

	rest, err := g.dumpStart(slots)
	if err != nil {
		return nil, err
	}

	var packets []Packet
	for {
		next, pkt, err := g.packet(rest)
		if err != nil {
			if len(packets) == 0 {
				return nil, err
			}
			return nil, g.fail(RuleTrailing, rest, err)
		}
		packets = append(packets, pkt)
		rest = next
		if len(rest) == 0 {
			return packets, nil
		}
	}
}

// Decode classifies data and decodes the resulting slots.
func (p Protocol) Decode(data []uint32) ([]Packet, error) {
	return p.DecodeSlots(p.Classify(data))
}

// grammar holds the prefix-match rules. Each rule takes the unconsumed
// slots and returns what is left after its match.
type grammar struct {
	p     Protocol
	total int
}

func (g grammar) fail(rule Rule, rest []TimeSlot, cause *DecodeError) *DecodeError {
	return &DecodeError{
		Rule:      rule,
		Offset:    g.total - len(rest),
		Remaining: slices.Clone(rest),
		Cause:     cause,
	}
}

func (g grammar) units(s TimeSlot) uint32 {
	return units.Units(s.Micros, g.p.UnitMicros)
}

func (g grammar) unusual(s TimeSlot, c Component) bool {
	return s.Class == Unusual && s.Component == c
}

// dumpStart matches a short pulse followed by a super-long pause.
func (g grammar) dumpStart(rest []TimeSlot) ([]TimeSlot, *DecodeError) {
	if len(rest) >= 2 &&
		rest[0] == ShortPulse() &&
		g.unusual(rest[1], Pause) &&
		g.units(rest[1]) >= g.p.DumpStartMinUnits {
		return rest[2:], nil
	}
	return nil, g.fail(RuleDumpStart, rest, nil)
}

// packet matches leader, one or more bits and a packet end.
func (g grammar) packet(rest []TimeSlot) ([]TimeSlot, Packet, *DecodeError) {
	rest, err := g.packetStart(rest)
	if err != nil {
		return nil, Packet{}, err
	}

	var received []bool
	for {
		next, bit, ok := g.bit(rest)
		if !ok {
			break
		}
		received = append(received, bit)
		rest = next
	}
	if len(received) == 0 {
		return nil, Packet{}, g.fail(RuleBit, rest, nil)
	}

	rest, err = g.packetEnd(rest)
	if err != nil {
		return nil, Packet{}, err
	}

	slices.Reverse(received)
	return rest, Packet{Bits: received}, nil
}

// packetStart matches the AGC leader: a long mark and a longer space.
func (g grammar) packetStart(rest []TimeSlot) ([]TimeSlot, *DecodeError) {
	if len(rest) >= 2 &&
		g.unusual(rest[0], Pulse) &&
		g.unusual(rest[1], Pause) &&
		g.p.LeaderPulseUnits.Contains(g.units(rest[0])) &&
		g.p.LeaderPauseUnits.Contains(g.units(rest[1])) {
		return rest[2:], nil
	}
	return nil, g.fail(RulePacketStart, rest, nil)
}

// bit matches a short pulse followed by a short (0) or long (1) pause.
func (g grammar) bit(rest []TimeSlot) ([]TimeSlot, bool, bool) {
	if len(rest) < 2 || rest[0] != ShortPulse() {
		return rest, false, false
	}
	switch rest[1] {
	case ShortPause():
		return rest[2:], false, true
	case LongPause():
		return rest[2:], true, true
	}
	return rest, false, false
}

// packetEnd matches a short pulse that either ends the signal or is
// followed by the gap before the next leader.
func (g grammar) packetEnd(rest []TimeSlot) ([]TimeSlot, *DecodeError) {
	switch {
	case len(rest) == 1 && rest[0] == ShortPulse():
		return rest[1:], nil
	case len(rest) >= 2 &&
		rest[0] == ShortPulse() &&
		g.unusual(rest[1], Pause) &&
		g.p.GapPauseUnits.Contains(g.units(rest[1])):
		return rest[2:], nil
	}
	return nil, g.fail(RulePacketEnd, rest, nil)
}
