package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/irdump/internal/irdecode"
	"github.com/banshee-data/irdump/internal/irdump"
	"github.com/banshee-data/irdump/internal/units"
)

// Jitter describes how far the durations of one class sit from their
// nominal length, in microseconds.
type Jitter struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean_us"`
	StdDev float64 `json:"stddev_us"`
	P95    float64 `json:"p95_us"`
	Max    float64 `json:"max_us"`
}

// SignalSummary is the timing report of one raw signal. RoundedMicros is
// the signal length on the unit grid, as drawn on the timeline.
type SignalSummary struct {
	Name          string  `json:"name"`
	Frequency     uint32  `json:"frequency"`
	Durations     int     `json:"durations"`
	TotalMicros   uint64  `json:"total_us"`
	RoundedMicros uint64  `json:"rounded_us"`
	Short         int     `json:"short"`
	Long          int     `json:"long"`
	Unusual       int     `json:"unusual"`
	ShortJitter   Jitter  `json:"short_jitter"`
	LongJitter    Jitter  `json:"long_jitter"`
	Packets       int     `json:"packets"`
	PacketBits    []int   `json:"packet_bits,omitempty"`
	DecodeError   *string `json:"decode_error,omitempty"`
}

// Summary is the timing report of a whole dump.
type Summary struct {
	UnitMicros uint32          `json:"unit_us"`
	Signals    []SignalSummary `json:"signals"`
}

// Summarize classifies and decodes sig under p and reports slot counts and
// the deviation of Short and Long durations from their nominal value.
func Summarize(p irdecode.Protocol, sig irdump.RawSignal) SignalSummary {
	s := SignalSummary{
		Name:          sig.Name,
		Frequency:     sig.Frequency,
		Durations:     sig.Len(),
		RoundedMicros: units.SumRounded(sig.Data, p.UnitMicros),
	}

	var shortDev, longDev []float64
	for i, slot := range p.Classify(sig.Data) {
		d := sig.Data[i]
		s.TotalMicros += uint64(d)
		switch slot.Class {
		case irdecode.Short:
			s.Short++
			shortDev = append(shortDev, deviation(d, p.ShortMicros()))
		case irdecode.Long:
			s.Long++
			longDev = append(longDev, deviation(d, p.LongMicros()))
		default:
			s.Unusual++
		}
	}
	s.ShortJitter = jitter(shortDev)
	s.LongJitter = jitter(longDev)

	packets, err := p.Decode(sig.Data)
	if err != nil {
		msg := err.Error()
		s.DecodeError = &msg
	} else {
		s.Packets = len(packets)
		s.PacketBits = make([]int, len(packets))
		for i, pkt := range packets {
			s.PacketBits[i] = pkt.Len()
		}
	}
	return s
}

// SummarizeDump summarizes every signal of dump in order.
func SummarizeDump(p irdecode.Protocol, dump irdump.DumpFile) Summary {
	out := Summary{UnitMicros: p.UnitMicros, Signals: make([]SignalSummary, 0, len(dump.Signals))}
	for _, sig := range dump.Signals {
		out.Signals = append(out.Signals, Summarize(p, sig))
	}
	return out
}

// WriteJSON writes the summary as indented JSON.
func (s Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

func deviation(d, nominal uint32) float64 {
	if d > nominal {
		return float64(d - nominal)
	}
	return float64(nominal - d)
}

func jitter(dev []float64) Jitter {
	if len(dev) == 0 {
		return Jitter{}
	}
	slices.Sort(dev)
	mean, std := stat.PopMeanStdDev(dev, nil)
	return Jitter{
		Count:  len(dev),
		Mean:   mean,
		StdDev: std,
		P95:    stat.Quantile(0.95, stat.Empirical, dev, nil),
		Max:    dev[len(dev)-1],
	}
}
