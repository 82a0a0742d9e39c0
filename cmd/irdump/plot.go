package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/irdump/internal/export"
	"github.com/banshee-data/irdump/internal/irdump"
	"github.com/banshee-data/irdump/internal/monitoring"
)

const (
	formatPNG  = "png"
	formatHTML = "html"

	htmlPageName = "signals.html"
)

func plotCmd(a *app) *cobra.Command {
	var (
		input  string
		outDir string
		format string
		decode bool
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a pulse/pause timeline for every signal of a dump",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatPNG && format != formatHTML {
				return fmt.Errorf("unknown format %q (want png or html)", format)
			}
			dump, err := a.loadDump(input)
			if err != nil {
				return err
			}

			if decode {
				results, err := a.decode(cmd.Context(), dump)
				if err != nil {
					return err
				}
				for _, sig := range decodedSignals(results) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", sig.Name, strings.Join(sig.PacketStrings(), " "))
				}
			}

			if err := a.fs.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if format == formatHTML {
				return a.writeFile(filepath.Join(outDir, htmlPageName), func(w io.Writer) error {
					return export.RenderTimelinePage(w, dump.Signals)
				})
			}
			return a.plotPNGs(outDir, dump.Signals)
		},
	}

	cmd.Flags().StringVarP(&input, "file", "f", "", "dump file to plot")
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "directory for the rendered files")
	cmd.Flags().StringVar(&format, "format", formatPNG, "output format: png (one image per signal) or html (one page)")
	cmd.Flags().BoolVar(&decode, "decode", false, "also decode each signal and print its packets")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) plotPNGs(dir string, signals []irdump.RawSignal) error {
	for _, sig := range signals {
		path, err := outputPath(dir, sig.Name, ".png")
		if err != nil {
			return err
		}
		monitoring.Debugf("plotting %q to %s", sig.Name, path)
		if err := a.writeFile(path, func(w io.Writer) error {
			return export.PlotSignal(w, sig)
		}); err != nil {
			return fmt.Errorf("signal %q: %w", sig.Name, err)
		}
	}
	return nil
}

// writeFile creates path and hands it to render, closing it afterwards.
func (a *app) writeFile(path string, render func(io.Writer) error) error {
	f, err := a.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
