package irdecode

import (
	"fmt"
	"slices"
	"strings"

	"github.com/banshee-data/irdump/internal/irdump"
)

// Packet is one demodulated burst. Bits[0] is the last bit received.
type Packet struct {
	Bits []bool
}

// NewPacket builds a packet from a 0/1 string in storage order.
func NewPacket(bits string) (Packet, error) {
	p := Packet{Bits: make([]bool, 0, len(bits))}
	for i, c := range bits {
		switch c {
		case '0':
			p.Bits = append(p.Bits, false)
		case '1':
			p.Bits = append(p.Bits, true)
		default:
			return Packet{}, fmt.Errorf("invalid bit %q at index %d", c, i)
		}
	}
	return p, nil
}

// Len returns the number of bits.
func (p Packet) Len() int {
	return len(p.Bits)
}

// String renders the bits as 0/1 characters starting at index 0.
func (p Packet) String() string {
	var b strings.Builder
	b.Grow(len(p.Bits))
	for _, bit := range p.Bits {
		if bit {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParsedSignal is a fully decoded RawSignal. It shares no memory with the
// signal it was decoded from.
type ParsedSignal struct {
	Name      string
	Kind      irdump.SignalKind
	Frequency uint32
	DutyCycle float32
	Packets   []Packet
}

// PacketStrings returns each packet rendered with Packet.String.
func (s ParsedSignal) PacketStrings() []string {
	out := make([]string, len(s.Packets))
	for i, p := range s.Packets {
		out[i] = p.String()
	}
	return out
}

// DecodeSignal decodes one raw signal. Errors are *DecodeError values
// wrapped with the signal name.
func (p Protocol) DecodeSignal(raw irdump.RawSignal) (ParsedSignal, error) {
	packets, err := p.Decode(raw.Data)
	if err != nil {
		return ParsedSignal{}, fmt.Errorf("signal %q: %w", raw.Name, err)
	}
	return ParsedSignal{
		Name:      raw.Name,
		Kind:      raw.Kind,
		Frequency: raw.Frequency,
		DutyCycle: raw.DutyCycle,
		Packets:   slices.Clip(packets),
	}, nil
}
