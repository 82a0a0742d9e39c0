package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/irdump/internal/export"
)

func csvCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Decode a dump and write one CSV row of packets per signal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dump, err := a.loadDump(input)
			if err != nil {
				return err
			}
			results, err := a.decode(cmd.Context(), dump)
			if err != nil {
				return err
			}

			signals := decodedSignals(results)
			if err := a.writeFile(output, func(w io.Writer) error {
				return export.WriteCSV(w, signals)
			}); err != nil {
				return fmt.Errorf("failed to write csv: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d signals to %s\n", len(signals), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "file", "f", "", "dump file to decode")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV file to write")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
