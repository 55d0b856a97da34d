package app

import (
	"github.com/spf13/cobra"

	"ampliscreen/internal/diagnostic"
	"ampliscreen/internal/spacing"
)

func newDiagnosticCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnostic [input]",
		Short: "Keep variants whose target allele differs from every other called allele",
		Args:  inputArgs(e),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(e.v, cmd.Flags(), map[string]string{"screen.target": "target"})
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := e.prepare(); err != nil {
				return err
			}
			set, err := e.load()
			if err != nil {
				return err
			}
			out, err := diagnostic.Filter(set, e.cfg.Screen.Target)
			if err != nil {
				return err
			}
			e.log.Info("diagnostic filter", "kept", out.Len(), "of", set.Len())
			return e.emit(out, false)
		},
	}
	cmd.Flags().StringP("target", "t", "664c", "sample whose allele must be diagnostic")
	return cmd
}

func newSpaceCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "space [input]",
		Short: "Thin variants to a minimum spacing per chromosome",
		Args:  inputArgs(e),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(e.v, cmd.Flags(), map[string]string{"space.min-spacing": "min-spacing"})
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := e.prepare(); err != nil {
				return err
			}
			set, err := e.load()
			if err != nil {
				return err
			}
			out := spacing.Select(set.Variants, e.cfg.Space.MinSpacing)
			e.log.Info("spacing filter", "kept", len(out), "of", set.Len(), "min_spacing", e.cfg.Space.MinSpacing)
			return e.emit(set.With(out), false)
		},
	}
	cmd.Flags().Int("min-spacing", 1000, "minimum distance between kept variants on a chromosome")
	return cmd
}
