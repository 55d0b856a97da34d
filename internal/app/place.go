package app

import (
	"github.com/spf13/cobra"

	"ampliscreen/internal/pipeline"
)

func newPlaceCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place [input]",
		Short: "Place amplicon windows for every variant without filtering",
		Long: `Place an amplicon window for every variant, chromosome by chromosome.

Every input row is printed with primer_compliant, amplicon_start, amplicon_end
and displacement columns. Rows are grouped by chromosome in the order each
chromosome first appears.`,
		Args: inputArgs(e),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(e.v, cmd.Flags(), ampliconKeys)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.prepare(); err != nil {
				return err
			}
			set, err := e.load()
			if err != nil {
				return err
			}
			coord := pipeline.New(pipeline.Config{Workers: e.cfg.Workers}, pipeline.AmpliconScreener{Params: e.cfg.AmpliconParams()})
			out, err := coord.Screen(cmd.Context(), set.Variants)
			if err != nil {
				return err
			}
			n := 0
			for _, v := range out {
				if v.Compliant {
					n++
				}
			}
			e.log.Info("placed amplicons", "variants", len(out), "compliant", n, "workers", coord.Workers())
			return e.emit(set.With(out), false)
		},
	}
	addAmpliconFlags(cmd)
	return cmd
}
