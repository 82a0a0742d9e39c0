// Package irdump parses IR signal dump documents: a fixed header followed by
// zero or more raw pulse/pause recordings.
//
// A document looks like:
//
//	Filetype: IR signals file
//	Version: 1
//	#
//	name: power
//	type: raw
//	frequency: 38000
//	duty_cycle: 0.330000
//	data: 550 17700 2972 8930 550 550 550 1650 550
//
// Parsing is all-or-nothing: any deviation from the grammar fails the whole
// document with a *FormatError pointing at the offending byte.
package irdump

import "fmt"

// SignalKind identifies how a record's data line is encoded.
type SignalKind int

const (
	// KindRaw records carry alternating pulse/pause durations in microseconds.
	KindRaw SignalKind = iota
)

// kindTokens maps the "type: " token of a record to its kind.
var kindTokens = []struct {
	token string
	kind  SignalKind
}{
	{"raw", KindRaw},
}

func (k SignalKind) String() string {
	for _, kt := range kindTokens {
		if kt.kind == k {
			return kt.token
		}
	}
	return fmt.Sprintf("SignalKind(%d)", int(k))
}

// RawSignal is one captured transmission.
type RawSignal struct {
	Name      string
	Kind      SignalKind
	Frequency uint32 // carrier frequency in Hz
	DutyCycle float32
	// Data is a list of durations in microseconds. Data[0] is a pulse,
	// Data[1] the pause after it, and so on alternately.
	Data []uint32
}

// Len returns the number of recorded durations.
func (s RawSignal) Len() int {
	return len(s.Data)
}

// DumpFile is a fully parsed dump document.
type DumpFile struct {
	Version uint32
	Signals []RawSignal
}

// Names returns the signal names in document order.
func (d DumpFile) Names() []string {
	names := make([]string, len(d.Signals))
	for i, s := range d.Signals {
		names[i] = s.Name
	}
	return names
}
