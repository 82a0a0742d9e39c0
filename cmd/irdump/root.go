package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/irdump/internal/config"
	"github.com/banshee-data/irdump/internal/fsutil"
	"github.com/banshee-data/irdump/internal/irdecode"
	"github.com/banshee-data/irdump/internal/irdump"
	"github.com/banshee-data/irdump/internal/monitoring"
	"github.com/banshee-data/irdump/internal/timeutil"
	"github.com/banshee-data/irdump/internal/version"
)

// app carries the global flags and the side-effect boundaries shared by
// every subcommand.
type app struct {
	fs    fsutil.FileSystem
	clock timeutil.Clock

	configPath  string
	workers     int
	skipInvalid bool
	debug       bool
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "irdump",
		Short:        "Decode, plot and store IR signal dumps",
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			monitoring.SetDebug(a.debug)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "calibration file (.json, .yaml or .yml); defaults to the built-in protocol")
	cmd.PersistentFlags().IntVar(&a.workers, "workers", 1, "number of signals decoded in parallel")
	cmd.PersistentFlags().BoolVar(&a.skipInvalid, "skip-invalid", false, "log and skip signals that do not decode instead of failing")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		csvCmd(a),
		plotCmd(a),
		statsCmd(a),
		importCmd(a),
		listCmd(a),
	)
	return cmd
}

// protocol returns the decoder calibration selected by --config.
func (a *app) protocol() (irdecode.Protocol, error) {
	if a.configPath == "" {
		return irdecode.DefaultProtocol(), nil
	}
	cfg, err := config.LoadCalibrationConfig(a.fs, a.configPath)
	if err != nil {
		return irdecode.Protocol{}, err
	}
	monitoring.Debugf("loaded calibration from %s", a.configPath)
	return cfg.Protocol(), nil
}

// loadDump reads and parses a dump document. A malformed dump is always
// fatal.
func (a *app) loadDump(path string) (irdump.DumpFile, error) {
	data, err := a.fs.ReadFile(path)
	if err != nil {
		return irdump.DumpFile{}, fmt.Errorf("failed to read file: %w", err)
	}
	dump, err := irdump.ParseBytes(data)
	if err != nil {
		return irdump.DumpFile{}, fmt.Errorf("failed decoding dump %s: %w", path, err)
	}
	monitoring.Debugf("parsed %s: version %d, signals %q", path, dump.Version, dump.Names())
	return dump, nil
}

// decode runs the packet decoder over every signal of dump. Without
// --skip-invalid the first undecodable signal fails the command.
func (a *app) decode(ctx context.Context, dump irdump.DumpFile) ([]irdecode.Result, error) {
	p, err := a.protocol()
	if err != nil {
		return nil, err
	}
	results, err := irdecode.DecodeAll(ctx, p, dump.Signals, a.workers)
	if err != nil {
		return nil, err
	}

	failed := irdecode.Failed(results)
	if len(failed) == 0 {
		return results, nil
	}
	if !a.skipInvalid {
		return nil, fmt.Errorf("failed to parse signal: %w", failed[0].Err)
	}
	for _, r := range failed {
		monitoring.Logf("skipping signal %d %q: %v", r.Index, r.Name, r.Err)
	}
	return results, nil
}

// decodedSignals returns the successfully decoded signals in dump order.
func decodedSignals(results []irdecode.Result) []irdecode.ParsedSignal {
	out := make([]irdecode.ParsedSignal, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Signal)
		}
	}
	return out
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// outputPath joins dir with a file name derived from a signal name.
func outputPath(dir, name, ext string) (string, error) {
	base := fileNameReplacer.Replace(name)
	if base == "" || base == "." || base == ".." {
		return "", fmt.Errorf("signal name %q cannot be used as a file name", name)
	}
	return filepath.Join(dir, base+ext), nil
}
