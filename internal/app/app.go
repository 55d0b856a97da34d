// Package app is the ampliscreen command line: a cobra command tree whose
// flags are layered over config-file and environment settings with viper.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ampliscreen/internal/cmdutil"
	"ampliscreen/internal/config"
	"ampliscreen/internal/diagnostic"
	"ampliscreen/internal/output"
	"ampliscreen/internal/variant"
	"ampliscreen/internal/version"
	"ampliscreen/internal/writers"
)

// env is the per-invocation state shared by subcommands.
type env struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	cfg  config.Config
	log  *slog.Logger
	code int // exit code for a run that finished without error
}

// RunContext executes argv and returns the process exit code.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	e := &env{v: viper.New(), stdout: stdout, stderr: stderr}
	config.SetDefaults(e.v)
	config.UseEnv(e.v)

	root := newRootCmd(e)
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		code := cmdutil.ExitCode(err)
		if code != cmdutil.ExitOK {
			fmt.Fprintln(stderr, "error:", err)
			if code == cmdutil.ExitUsage && !errors.Is(err, diagnostic.ErrConfiguration) {
				fmt.Fprintln(stderr, "Run 'ampliscreen --help' for usage.")
			}
		}
		return code
	}
	return e.code
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func newRootCmd(e *env) *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "ampliscreen",
		Short: "Select well-spaced, primer-compatible genotyping markers from candidate variants",
		Long: `Select PCR genotyping markers from a table of candidate variants.

"ampliscreen screen" runs the full selection:

1. keep variants with enough call reliability, complete info and F2 data
2. keep variants whose target sample allele differs from every other called allele
3. give each variant an amplicon whose primer regions hold no other variant,
   shifting the window a few bases when the centred one conflicts
4. thin the markers to a minimum spacing per chromosome
5. rank by quality score and keep the best`,
		Version:       version.Version,
		Args:          unknownCommand,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.ReadFile(e.v, cfgFile); err != nil {
				return err
			}
			return bindFlags(e.v, cmd.Flags(), map[string]string{
				"input":                     "input",
				"workers":                   "workers",
				"quiet":                     "quiet",
				"verbose":                   "verbose",
				"progress":                  "progress",
				"output.format":             "output",
				"output.no-header":          "no-header",
				"output.no-match-exit-code": "no-match-exit-code",
			})
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return cmdutil.UsageError(err) })
	root.SetVersionTemplate("ampliscreen version {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML/TOML/JSON config file")
	pf.StringP("input", "i", "-", "variant table (TSV, or CSV by .csv extension; '-' = stdin)")
	pf.IntP("workers", "w", 0, "chromosomes screened concurrently (0 = min(CPUs-1, 4))")
	pf.BoolP("quiet", "q", false, "only log warnings and errors")
	pf.BoolP("verbose", "v", false, "log debug detail")
	pf.Bool("progress", false, "show a progress bar while screening chromosomes")
	pf.StringP("output", "o", "text", "output format: text | json | jsonl")
	pf.Bool("no-header", false, "suppress the TSV header line")
	pf.Int("no-match-exit-code", 0, "exit code when no variant is left")

	root.AddCommand(
		newScreenCmd(e),
		newPlaceCmd(e),
		newDiagnosticCmd(e),
		newSpaceCmd(e),
		newRunsCmd(e),
	)
	return root
}

// bindFlags binds the named flags (key -> flag) of the running command only,
// so commands sharing a key cannot steal each other's bindings.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// unknownCommand rejects stray root arguments, which are mistyped subcommands.
func unknownCommand(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return cmdutil.UsageError(fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()))
	}
	return nil
}

// inputArgs accepts an optional positional input path in place of --input.
func inputArgs(e *env) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
			return cmdutil.UsageError(err)
		}
		if len(args) == 1 {
			e.v.Set("input", args[0])
		}
		return nil
	}
}

// prepare loads config and logger; subcommands call it first in RunE.
func (e *env) prepare() error {
	cfg, err := config.Load(e.v)
	if err != nil {
		return err
	}
	if !writers.Known(cfg.Output.Format) {
		return cmdutil.UsageError(fmt.Errorf("invalid --output %q (want one of %v)", cfg.Output.Format, writers.Formats()))
	}
	e.cfg = cfg
	e.log = cmdutil.NewLogger(e.stderr, cfg.Quiet, cfg.Verbose)
	return nil
}

func (e *env) load() (variant.Set, error) {
	set, err := variant.LoadTable(e.cfg.Input)
	if err != nil {
		return variant.Set{}, cmdutil.UsageError(err)
	}
	e.log.Info("loaded variants", "input", e.cfg.Input, "variants", set.Len(), "samples", len(set.Samples))
	return set, nil
}

// emit writes set and records the no-match exit code for empty results.
func (e *env) emit(set variant.Set, withScore bool) error {
	err := writers.Write(e.cfg.Output.Format, e.stdout, set, output.Options{
		Header: !e.cfg.Output.NoHeader,
		Score:  withScore,
	})
	if err = writers.IgnoreBrokenPipe(err); err != nil {
		return err
	}
	if set.Len() == 0 {
		e.code = e.cfg.Output.NoMatchExitCode
	}
	return nil
}
