// Package units provides the timing grid used to quantise IR pulse and pause
// durations.
package units

import "math"

// ShortMicros is the nominal short pulse/pause of the supported remote family.
const ShortMicros uint32 = 550

// PlotFloorMicros is the minimum span of a rendered signal timeline.
const PlotFloorMicros uint32 = 300_000

// RoundTo rounds x to the nearest multiple of r, ties rounding up.
// The intermediate sum is computed in 64 bits so values near MaxUint32 do not
// wrap; a result that would not fit in 32 bits is rounded down instead.
// A zero r returns x unchanged.
func RoundTo(x, r uint32) uint32 {
	if r == 0 {
		return x
	}
	q := (uint64(x) + uint64(r)/2) / uint64(r) * uint64(r)
	if q > math.MaxUint32 {
		q -= uint64(r)
	}
	return uint32(q)
}

// Units returns how many whole r-sized units fit in x (integer division).
func Units(x, r uint32) uint32 {
	if r == 0 {
		return 0
	}
	return x / r
}

// SumRounded rounds each duration to r and returns the total span.
func SumRounded(durations []uint32, r uint32) uint64 {
	var total uint64
	for _, d := range durations {
		total += uint64(RoundTo(d, r))
	}
	return total
}
