package irdecode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/irdump/internal/irdump"
	"github.com/banshee-data/irdump/internal/testutil"
)

func TestNewPacket(t *testing.T) {
	p, err := NewPacket("1001")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false, true}, p.Bits)
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, "1001", p.String())

	_, err = NewPacket("10x1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `'x' at index 2`)

	empty, err := NewPacket("")
	require.NoError(t, err)
	assert.Equal(t, "", empty.String())
}

func TestDecodeSignal_CopiesMetadata(t *testing.T) {
	raw := irdump.RawSignal{
		Name:      "power",
		Kind:      irdump.KindRaw,
		Frequency: 38000,
		DutyCycle: 0.33,
		Data:      testutil.OnePacketTrace(),
	}
	before := append([]uint32(nil), raw.Data...)

	sig, err := DefaultProtocol().DecodeSignal(raw)
	require.NoError(t, err)

	want := ParsedSignal{
		Name:      "power",
		Kind:      irdump.KindRaw,
		Frequency: 38000,
		DutyCycle: 0.33,
		Packets:   []Packet{{Bits: []bool{true, false}}},
	}
	if diff := cmp.Diff(want, sig); diff != "" {
		t.Errorf("DecodeSignal mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, before, raw.Data, "input must not be modified")
}

// Scenario D: a signal that matches no dump start.
func TestDecodeSignal_Undecodable(t *testing.T) {
	raw := irdump.RawSignal{Name: "noise", Kind: irdump.KindRaw, Data: []uint32{550, 550, 550, 550}}

	sig, err := DefaultProtocol().DecodeSignal(raw)
	require.Error(t, err)
	assert.Equal(t, ParsedSignal{}, sig)
	assert.True(t, errors.Is(err, ErrUndecodable))
	assert.Contains(t, err.Error(), `signal "noise"`)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, RuleDumpStart, de.Rule)
}

func TestParsedSignal_PacketStrings(t *testing.T) {
	sig := ParsedSignal{Packets: []Packet{{Bits: []bool{true, false}}, {Bits: []bool{false, true, true}}}}
	assert.Equal(t, []string{"10", "011"}, sig.PacketStrings())
	assert.Empty(t, ParsedSignal{}.PacketStrings())
}
