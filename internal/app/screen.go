package app

import (
	"context"
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"ampliscreen/internal/metrics"
	"ampliscreen/internal/screening"
	"ampliscreen/internal/store"
	"ampliscreen/internal/variant"
)

func addAmpliconFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("primer-size", 20, "bases in each primer region")
	f.Int("amplicon-size", 300, "amplicon length centred on the variant")
	f.Int("displacement-steps", 5, "largest window shift tried in each direction")
	f.Bool("exclude-by-identity", false, "ignore only the variant's own row, so duplicates at one position conflict")
}

var ampliconKeys = map[string]string{
	"amplicon.primer-size":         "primer-size",
	"amplicon.amplicon-size":       "amplicon-size",
	"amplicon.displacement-steps":  "displacement-steps",
	"amplicon.exclude-by-identity": "exclude-by-identity",
}

func newScreenCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen [input]",
		Short: "Run the full marker selection and print the ranked markers",
		Args:  inputArgs(e),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			keys := map[string]string{
				"screen.target":          "target",
				"screen.min-reliability": "min-reliability",
				"screen.min-spacing":     "min-spacing",
				"screen.max-markers":     "max-markers",
				"output.db":              "db",
				"output.metrics-out":     "metrics-out",
			}
			for k, f := range ampliconKeys {
				keys[k] = f
			}
			return bindFlags(e.v, cmd.Flags(), keys)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.prepare(); err != nil {
				return err
			}
			set, err := e.load()
			if err != nil {
				return err
			}
			return e.runScreen(cmd.Context(), set)
		},
	}
	f := cmd.Flags()
	f.StringP("target", "t", "664c", "sample whose allele must be diagnostic")
	f.String("min-reliability", "medium", "lowest overall_reliability kept: low | medium | high")
	f.Int("min-spacing", 2000, "minimum distance between selected markers on a chromosome")
	f.IntP("max-markers", "n", 50, "maximum markers reported")
	f.String("db", "", "also save the run to a database (SQLite path or postgres:// URL)")
	f.String("metrics-out", "", "write Prometheus metrics to this textfile")
	addAmpliconFlags(cmd)
	return cmd
}

func (e *env) runScreen(ctx context.Context, set variant.Set) error {
	rec := metrics.New()
	opts := []screening.Option{screening.WithLogger(e.log), screening.WithMetrics(rec)}

	var bar *pb.ProgressBar
	if e.cfg.Progress {
		bar = pb.New(0).SetWriter(e.stderr).Set("prefix", "chromosomes ")
		opts = append(opts,
			screening.WithScreenStart(func(n int) { bar.SetTotal(int64(n)).Start() }),
			screening.WithProgress(func(string) { bar.Increment() }),
		)
	}

	p, err := screening.New(e.cfg.ScreeningOptions(), opts...)
	if err != nil {
		return err
	}
	res, err := p.Run(ctx, set)
	if bar != nil && bar.IsStarted() {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	if res.StoppedAt != "" {
		e.log.Info("no markers selected", "stage", res.StoppedAt)
	}

	if path := e.cfg.Output.MetricsOut; path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if dsn := e.cfg.Output.DB; dsn != "" {
		st, err := store.Open(ctx, dsn)
		if err != nil {
			return err
		}
		run, err := st.SaveRun(ctx, e.cfg.Screen.Target, res.Fallback(), res.Markers.Variants)
		_ = st.Close()
		if err != nil {
			return err
		}
		e.log.Info("saved run", "run_id", run.ID, "markers", run.Markers)
	}
	return e.emit(res.Markers, true)
}
