package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/irdump/internal/store"
)

func listCmd(a *app) *cobra.Command {
	var dbPath, id string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported dumps, or the signals of one dump with --id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(dbPath, store.WithClock(a.clock))
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if id == "" {
				dumps, err := st.Dumps(cmd.Context())
				if err != nil {
					return err
				}
				for _, d := range dumps {
					fmt.Fprintf(out, "%s\t%s\tv%d\t%d signals\t%s\n",
						d.ID, d.Source, d.Version, d.SignalCount, d.ImportedAt.Format("2006-01-02T15:04:05Z"))
				}
				return nil
			}

			signals, err := st.Signals(cmd.Context(), id)
			if err != nil {
				return err
			}
			for _, s := range signals {
				if !s.Decoded() {
					fmt.Fprintf(out, "%d\t%s\terror: %s\n", s.Index, s.Name, s.DecodeError)
					continue
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", s.Index, s.Name, strings.Join(s.Packets, " "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "irdump.db", "SQLite database path")
	cmd.Flags().StringVar(&id, "id", "", "dump id to show signals for")
	return cmd
}
