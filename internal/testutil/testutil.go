// Package testutil provides shared test utilities and fixtures.
//
// Fixtures are plain strings and duration slices so that any package,
// including the parser itself, can use them without an import cycle.
package testutil

import (
	"fmt"
	"strconv"
	"strings"
)

// DumpHeader is the two-line header every dump document starts with.
const DumpHeader = "Filetype: IR signals file\nVersion: 1\n"

// Record describes one raw signal record of a dump document.
type Record struct {
	Name      string
	Frequency uint32
	DutyCycle string // written verbatim, e.g. "0.330000"
	Data      []uint32
}

// Text renders the record in dump syntax, terminated by a newline.
func (r Record) Text() string {
	duty := r.DutyCycle
	if duty == "" {
		duty = "0.330000"
	}
	parts := make([]string, len(r.Data))
	for i, d := range r.Data {
		parts[i] = strconv.FormatUint(uint64(d), 10)
	}
	return fmt.Sprintf("#\nname: %s\ntype: raw\nfrequency: %d\nduty_cycle: %s\ndata: %s\n",
		r.Name, r.Frequency, duty, strings.Join(parts, " "))
}

// Dump renders a version-1 document holding the given records.
func Dump(records ...Record) string {
	var b strings.Builder
	b.WriteString(DumpHeader)
	for _, r := range records {
		b.WriteString(r.Text())
	}
	return b.String()
}

// OnePacketTrace decodes to a single packet: bits 0,1 received, stored [1 0].
func OnePacketTrace() []uint32 {
	return []uint32{
		550, 17700, // dump start
		2972, 8930, // leader
		550, 550, // 0
		550, 1650, // 1
		550, // end of stream
	}
}

// TwoPacketTrace decodes to two packets, stored [1 0] and [0 1].
func TwoPacketTrace() []uint32 {
	return []uint32{
		550, 17700,
		2972, 8930,
		550, 550,
		550, 1650,
		550, 2920, // inter-packet gap
		2972, 8930,
		550, 1650,
		550, 550,
		550,
	}
}
