package app

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ampliscreen/internal/cmdutil"
	"ampliscreen/internal/store"
)

func newRunsCmd(e *env) *cobra.Command {
	var show string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List screening runs saved with --db, or print one run's markers",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(e.v, cmd.Flags(), map[string]string{"output.db": "db"})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.prepare(); err != nil {
				return err
			}
			if e.cfg.Output.DB == "" {
				return cmdutil.UsageError(errors.New("--db is required"))
			}
			ctx := cmd.Context()
			st, err := store.Open(ctx, e.cfg.Output.DB)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if show != "" {
				markers, err := st.Markers(ctx, show)
				if err != nil {
					return err
				}
				if len(markers) == 0 {
					e.log.Warn("run has no markers", "run_id", show)
				}
				return e.emit(store.MarkerSet(markers), true)
			}

			runs, err := st.Runs(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
			if !e.cfg.Output.NoHeader {
				fmt.Fprintln(tw, "run_id\tcreated_at\ttarget\tfallback\tmarkers")
			}
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\n", r.ID, r.CreatedAt.Format(time.RFC3339), r.Target, r.Fallback, r.Markers)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("db", "", "database holding saved runs (SQLite path or postgres:// URL)")
	cmd.Flags().StringVar(&show, "show", "", "print the markers of this run id")
	return cmd
}
