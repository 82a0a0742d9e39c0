package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/irdump/internal/monitoring"
	"github.com/banshee-data/irdump/internal/store"
)

func importCmd(a *app) *cobra.Command {
	var input, dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Decode a dump and store it with its packets in SQLite",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := a.clock.Now()
			dump, err := a.loadDump(input)
			if err != nil {
				return err
			}
			results, err := a.decode(cmd.Context(), dump)
			if err != nil {
				return err
			}

			st, err := store.Open(dbPath, store.WithClock(a.clock))
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := st.SaveDump(cmd.Context(), input, dump, results)
			if err != nil {
				return err
			}
			monitoring.Debugf("imported %s in %v", input, a.clock.Since(start))
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "file", "f", "", "dump file to import")
	cmd.Flags().StringVar(&dbPath, "db", "irdump.db", "SQLite database path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
