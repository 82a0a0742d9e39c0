package irdump

import (
	"strconv"
	"strings"
)

// Header and record literals, matched byte for byte.
const (
	tagFiletype  = "Filetype: IR signals file"
	tagVersion   = "Version: "
	tagComment   = "#"
	tagName      = "name: "
	tagType      = "type: "
	tagFrequency = "frequency: "
	tagDutyCycle = "duty_cycle: "
	tagData      = "data: "
)

const foundPreviewLen = 16

// Parse parses a complete dump document. On failure it returns a
// *FormatError and a zero DumpFile; no partial result is ever returned.
func Parse(input string) (DumpFile, error) {
	p := &parser{input: input}
	dump, err := p.document()
	if err != nil {
		return DumpFile{}, err
	}
	return dump, nil
}

// ParseBytes is Parse for a byte buffer.
func ParseBytes(b []byte) (DumpFile, error) {
	return Parse(string(b))
}

// parser is a cursor over the document. Every rule either advances pos past
// what it matched or returns a *FormatError positioned where matching failed.
type parser struct {
	input string
	pos   int
}

func (p *parser) document() (DumpFile, error) {
	if err := p.literal(tagFiletype); err != nil {
		return DumpFile{}, err
	}
	if err := p.lineEnd(); err != nil {
		return DumpFile{}, err
	}
	if err := p.literal(tagVersion); err != nil {
		return DumpFile{}, err
	}
	version, err := p.uint32Field("version")
	if err != nil {
		return DumpFile{}, err
	}
	if err := p.lineEnd(); err != nil {
		return DumpFile{}, err
	}

	dump := DumpFile{Version: version, Signals: []RawSignal{}}
	for !p.onlyWhitespaceLeft() {
		sig, err := p.record()
		if err != nil {
			return DumpFile{}, err
		}
		dump.Signals = append(dump.Signals, sig)
	}
	return dump, nil
}

func (p *parser) record() (RawSignal, error) {
	var sig RawSignal

	if err := p.literal(tagComment); err != nil {
		return sig, err
	}
	p.restOfLine()
	if err := p.lineEnd(); err != nil {
		return sig, err
	}

	if err := p.literal(tagName); err != nil {
		return sig, err
	}
	sig.Name = p.restOfLine()
	if err := p.lineEnd(); err != nil {
		return sig, err
	}

	kind, err := p.kind()
	if err != nil {
		return sig, err
	}
	sig.Kind = kind
	if err := p.lineEnd(); err != nil {
		return sig, err
	}

	if err := p.literal(tagFrequency); err != nil {
		return sig, err
	}
	if sig.Frequency, err = p.uint32Field("frequency"); err != nil {
		return sig, err
	}
	if err := p.lineEnd(); err != nil {
		return sig, err
	}

	if err := p.literal(tagDutyCycle); err != nil {
		return sig, err
	}
	if sig.DutyCycle, err = p.float32Field("duty_cycle"); err != nil {
		return sig, err
	}
	if err := p.lineEnd(); err != nil {
		return sig, err
	}

	if err := p.literal(tagData); err != nil {
		return sig, err
	}
	if sig.Data, err = p.durations(); err != nil {
		return sig, err
	}
	if err := p.lineEnd(); err != nil {
		return sig, err
	}

	return sig, nil
}

func (p *parser) kind() (SignalKind, error) {
	if err := p.literal(tagType); err != nil {
		return 0, err
	}
	rest := p.input[p.pos:]
	for _, kt := range kindTokens {
		if strings.HasPrefix(rest, kt.token) {
			p.pos += len(kt.token)
			return kt.kind, nil
		}
	}
	return 0, p.fail("signal type \"raw\"")
}

// durations parses a space separated list of u32 values. An empty list is
// legal; a trailing separator is not.
func (p *parser) durations() ([]uint32, error) {
	data := []uint32{}
	if !p.atDigit(p.pos) {
		return data, nil
	}
	for {
		v, err := p.uint32Field("duration")
		if err != nil {
			return nil, err
		}
		data = append(data, v)
		if p.pos+1 < len(p.input) && p.input[p.pos] == ' ' && p.atDigit(p.pos+1) {
			p.pos++
			continue
		}
		return data, nil
	}
}

func (p *parser) literal(tag string) error {
	if !strings.HasPrefix(p.input[p.pos:], tag) {
		return p.fail(strconv.Quote(tag))
	}
	p.pos += len(tag)
	return nil
}

// lineEnd accepts "\n" or "\r\n".
func (p *parser) lineEnd() error {
	rest := p.input[p.pos:]
	switch {
	case strings.HasPrefix(rest, "\n"):
		p.pos++
	case strings.HasPrefix(rest, "\r\n"):
		p.pos += 2
	default:
		return p.fail("line ending")
	}
	return nil
}

// restOfLine consumes and returns everything up to the next line ending.
func (p *parser) restOfLine() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '\n' {
			break
		}
		if c == '\r' && p.pos+1 < len(p.input) && p.input[p.pos+1] == '\n' {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) uint32Field(field string) (uint32, error) {
	start := p.pos
	end := start
	for end < len(p.input) && p.atDigit(end) {
		end++
	}
	if end == start {
		return 0, p.fail(field + " digits")
	}
	v, err := strconv.ParseUint(p.input[start:end], 10, 32)
	if err != nil {
		return 0, p.fail(field + " as unsigned 32-bit integer")
	}
	p.pos = end
	return uint32(v), nil
}

// float32Field lexes [+-]? (digits [. digits*] | . digits) ([eE] [+-]? digits)?
func (p *parser) float32Field(field string) (float32, error) {
	start := p.pos
	i := start
	if i < len(p.input) && (p.input[i] == '+' || p.input[i] == '-') {
		i++
	}
	mantissa := 0
	for i < len(p.input) && p.atDigit(i) {
		i++
		mantissa++
	}
	if i < len(p.input) && p.input[i] == '.' {
		i++
		for i < len(p.input) && p.atDigit(i) {
			i++
			mantissa++
		}
	}
	if mantissa == 0 {
		return 0, p.fail(field + " as decimal float")
	}
	if i < len(p.input) && (p.input[i] == 'e' || p.input[i] == 'E') {
		j := i + 1
		if j < len(p.input) && (p.input[j] == '+' || p.input[j] == '-') {
			j++
		}
		exp := j
		for j < len(p.input) && p.atDigit(j) {
			j++
		}
		// A dangling exponent marker is left for lineEnd to reject.
		if j > exp {
			i = j
		}
	}
	v, err := strconv.ParseFloat(p.input[start:i], 32)
	if err != nil {
		return 0, p.fail(field + " in float32 range")
	}
	p.pos = i
	return float32(v), nil
}

func (p *parser) atDigit(i int) bool {
	return i < len(p.input) && p.input[i] >= '0' && p.input[i] <= '9'
}

func (p *parser) onlyWhitespaceLeft() bool {
	return strings.TrimSpace(p.input[p.pos:]) == ""
}

func (p *parser) fail(expected string) *FormatError {
	line, col := 1, 1
	for i := 0; i < p.pos; i++ {
		if p.input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	found := p.input[p.pos:]
	if len(found) > foundPreviewLen {
		found = found[:foundPreviewLen]
	}
	return &FormatError{
		Offset:   p.pos,
		Line:     line,
		Column:   col,
		Expected: expected,
		Found:    found,
	}
}
