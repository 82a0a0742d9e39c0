package irdecode

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUndecodable is the sentinel wrapped by every *DecodeError.
var ErrUndecodable = errors.New("irdecode: undecodable signal")

// maxContextSlots bounds how much of the remainder an error message shows.
const maxContextSlots = 8

// Rule names the grammar rule that failed to match.
type Rule int

const (
	RuleDumpStart Rule = iota
	RulePacketStart
	RuleBit
	RulePacketEnd
	RuleTrailing
)

func (r Rule) String() string {
	switch r {
	case RuleDumpStart:
		return "dump start"
	case RulePacketStart:
		return "packet start"
	case RuleBit:
		return "bit"
	case RulePacketEnd:
		return "packet end"
	case RuleTrailing:
		return "trailing slots"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// DecodeError reports where the packet grammar stopped matching.
type DecodeError struct {
	Rule      Rule
	Offset    int        // index of the first unconsumed slot
	Remaining []TimeSlot // slots from Offset to the end of the signal
	// Cause is set for RuleTrailing: the failure of the packet that could
	// not be parsed from the tail.
	Cause *DecodeError
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "irdecode: %s did not match at slot %d", e.Rule, e.Offset)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (%s at slot %d)", e.Cause.Rule, e.Cause.Offset)
	}
	b.WriteString(": ")
	b.WriteString(formatSlots(e.Remaining))
	return b.String()
}

func (e *DecodeError) Unwrap() error {
	return ErrUndecodable
}

func formatSlots(slots []TimeSlot) string {
	if len(slots) == 0 {
		return "<end of signal>"
	}
	n := min(len(slots), maxContextSlots)
	parts := make([]string, 0, n+1)
	for _, s := range slots[:n] {
		parts = append(parts, s.String())
	}
	if len(slots) > n {
		parts = append(parts, fmt.Sprintf("... (%d more)", len(slots)-n))
	}
	return strings.Join(parts, " ")
}
