package irdecode

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/irdump/internal/irdump"
	"github.com/banshee-data/irdump/internal/monitoring"
)

// Result is the outcome of decoding the signal at Index of a batch.
// Exactly one of Signal and Err is meaningful.
type Result struct {
	Index  int
	Name   string
	Signal ParsedSignal
	Err    error
}

// DecodeAll decodes signals on at most workers goroutines and returns one
// Result per signal in input order. Per-signal failures are reported in
// Result.Err; the returned error is non-nil only when ctx is cancelled.
func DecodeAll(ctx context.Context, p Protocol, signals []irdump.RawSignal, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(signals))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range signals {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sig, err := p.DecodeSignal(signals[i])
			results[i] = Result{Index: i, Name: signals[i].Name, Signal: sig, Err: err}
			if err != nil {
				monitoring.Debugf("decode %q failed: %v", signals[i].Name, err)
			} else {
				monitoring.Debugf("decoded %q: %d packets", signals[i].Name, len(sig.Packets))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Failed returns the results that carry a decode error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
