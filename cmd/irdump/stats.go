package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/irdump/internal/export"
)

func statsCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report timing jitter and packet counts for every signal of a dump",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dump, err := a.loadDump(input)
			if err != nil {
				return err
			}
			p, err := a.protocol()
			if err != nil {
				return err
			}
			summary := export.SummarizeDump(p, dump)

			if output == "" {
				return summary.WriteJSON(cmd.OutOrStdout())
			}
			return a.writeFile(output, func(w io.Writer) error {
				return summary.WriteJSON(w)
			})
		},
	}

	cmd.Flags().StringVarP(&input, "file", "f", "", "dump file to summarise")
	cmd.Flags().StringVarP(&output, "output", "o", "", "JSON file to write (default stdout)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
