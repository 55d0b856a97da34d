// Package screening runs the marker selection stages in their fixed order:
// quality gate, diagnostic filter, amplicon screening, compliance retention,
// spacing and ranking.
package screening

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ampliscreen/internal/amplicon"
	"ampliscreen/internal/diagnostic"
	"ampliscreen/internal/metrics"
	"ampliscreen/internal/pipeline"
	"ampliscreen/internal/rank"
	"ampliscreen/internal/spacing"
	"ampliscreen/internal/variant"
)

// Stage names, as used in logs, metrics and Result.StoppedAt.
const (
	StageQuality    = "quality"
	StageDiagnostic = "diagnostic"
	StageScreen     = "screen"
	StageCompliant  = "compliant"
	StageSpacing    = "spacing"
	StageRank       = "rank"
)

// Decision is the outcome of the compliance retention step.
type Decision int

const (
	// DecisionCompliant keeps only primer-compliant variants.
	DecisionCompliant Decision = iota
	// DecisionFallbackUnscreened keeps the diagnostic variants as they were
	// before screening, because none was compliant.
	DecisionFallbackUnscreened
)

func (d Decision) String() string {
	if d == DecisionFallbackUnscreened {
		return "fallback-unscreened"
	}
	return "compliant"
}

// Options are fixed for the lifetime of a Pipeline.
type Options struct {
	TargetSample   string
	MinReliability variant.Reliability
	MinSpacing     int
	MaxMarkers     int
	Amplicon       amplicon.Params
	Workers        int
}

// DefaultOptions mirrors the documented defaults.
func DefaultOptions() Options {
	return Options{
		TargetSample:   "664c",
		MinReliability: variant.ReliabilityMedium,
		MinSpacing:     spacing.DefaultPipelineSpacing,
		MaxMarkers:     rank.DefaultMaxMarkers,
		Amplicon:       amplicon.DefaultParams,
		Workers:        pipeline.DefaultWorkers(),
	}
}

// Validate checks options before any stage runs.
func (o Options) Validate() error {
	if o.TargetSample == "" {
		return fmt.Errorf("%w: empty target sample", diagnostic.ErrConfiguration)
	}
	if o.MinReliability < variant.ReliabilityLow || o.MinReliability > variant.ReliabilityHigh {
		return fmt.Errorf("%w: min reliability must be low, medium or high", diagnostic.ErrConfiguration)
	}
	if o.MinSpacing < 0 {
		return fmt.Errorf("%w: min spacing must be >= 0", diagnostic.ErrConfiguration)
	}
	if o.MaxMarkers < 0 {
		return fmt.Errorf("%w: max markers must be >= 0", diagnostic.ErrConfiguration)
	}
	if err := o.Amplicon.Validate(); err != nil {
		return fmt.Errorf("%w: %v", diagnostic.ErrConfiguration, err)
	}
	return nil
}

// Result is the final marker set plus how the run got there.
type Result struct {
	Markers   variant.Set
	Counts    map[string]int // rows left after each stage that ran
	StoppedAt string         // first empty stage, "" when the run completed
	Decision  Decision
}

// Fallback reports whether the compliance fallback was taken.
func (r Result) Fallback() bool { return r.Decision == DecisionFallbackUnscreened }

// Pipeline is safe to Run repeatedly; it holds no per-run state.
type Pipeline struct {
	opts     Options
	coord    *pipeline.Coordinator
	log      *slog.Logger
	rec      *metrics.Recorder
	progress func(chrom string)

	screenStart func(partitions int)
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.log = l } }

// WithMetrics attaches a recorder.
func WithMetrics(r *metrics.Recorder) Option { return func(p *Pipeline) { p.rec = r } }

// WithProgress is called once per screened chromosome, possibly concurrently.
func WithProgress(fn func(chrom string)) Option { return func(p *Pipeline) { p.progress = fn } }

// WithScreenStart is called once, before primer screening, with the number of
// chromosome partitions that will be screened.
func WithScreenStart(fn func(partitions int)) Option {
	return func(p *Pipeline) { p.screenStart = fn }
}

// WithScreener replaces the amplicon screener used per partition.
func WithScreener(s pipeline.Screener) Option {
	return func(p *Pipeline) { p.coord = pipeline.New(pipeline.Config{Workers: p.opts.Workers}, s) }
}

// New validates opts and builds a pipeline.
func New(opts Options, with ...Option) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		opts:  opts,
		coord: pipeline.New(pipeline.Config{Workers: opts.Workers}, pipeline.AmpliconScreener{Params: opts.Amplicon}),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range with {
		fn(p)
	}
	p.coord.OnPartitionDone(func(chrom string, rows int, elapsed time.Duration, err error) {
		p.rec.Partition(elapsed, err)
		p.log.Debug("partition screened", "chrom", chrom, "variants", rows, "elapsed", elapsed, "err", err)
		if p.progress != nil {
			p.progress(chrom)
		}
	})
	return p, nil
}

// Workers is the coordinator's effective worker count.
func (p *Pipeline) Workers() int { return p.coord.Workers() }

// Options returns the options the pipeline was built with.
func (p *Pipeline) Options() Options { return p.opts }

// Run executes every stage. Empty stages end the run with an empty marker
// set and no error. Configuration and partition failures are errors.
func (p *Pipeline) Run(ctx context.Context, in variant.Set) (Result, error) {
	res := Result{Counts: make(map[string]int), Markers: in.With(nil)}
	p.log.Info("starting screening", "variants", in.Len(), "target", p.opts.TargetSample, "workers", p.coord.Workers())

	gated := QualityGate(in, p.opts.MinReliability)
	if p.empty(&res, StageQuality, gated.Len()) {
		return res, nil
	}

	diag, err := diagnostic.Filter(gated, p.opts.TargetSample)
	if err != nil {
		return res, err
	}
	if p.empty(&res, StageDiagnostic, diag.Len()) {
		return res, nil
	}

	if p.screenStart != nil {
		p.screenStart(len(pipeline.Split(diag.Variants)))
	}
	screened, err := p.coord.Screen(ctx, diag.Variants)
	if err != nil {
		return res, err
	}
	p.note(&res, StageScreen, len(screened))

	kept, decision := RetainCompliant(screened, diag.Variants)
	res.Decision = decision
	if decision == DecisionFallbackUnscreened {
		p.log.Warn("no primer compliant variants found, using all diagnostic variants", "variants", len(kept))
		p.rec.Fallback()
	}
	p.note(&res, StageCompliant, len(kept))

	spaced := spacing.Select(kept, p.opts.MinSpacing)
	if p.empty(&res, StageSpacing, len(spaced)) {
		return res, nil
	}

	final := rank.Top(spaced, p.opts.MaxMarkers)
	if len(final) < len(spaced) {
		p.log.Info("selected top variants", "max", p.opts.MaxMarkers)
	}
	if p.empty(&res, StageRank, len(final)) {
		return res, nil
	}
	res.Markers = in.With(final)
	return res, nil
}

// QualityGate keeps rows at or above floor reliability that have complete
// info and F2 data.
func QualityGate(in variant.Set, floor variant.Reliability) variant.Set {
	out := make([]variant.Variant, 0, in.Len())
	for _, v := range in.Variants {
		if v.Reliability != variant.ReliabilityUnknown && v.Reliability >= floor && v.CompleteInfo && v.HasF2Data {
			out = append(out, v)
		}
	}
	return in.With(out)
}

// RetainCompliant keeps the compliant rows of screened. When there are none
// it falls back to the unscreened diagnostic rows.
func RetainCompliant(screened, unscreened []variant.Variant) ([]variant.Variant, Decision) {
	var kept []variant.Variant
	for _, v := range screened {
		if v.Compliant {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return variant.Clone(unscreened), DecisionFallbackUnscreened
	}
	return kept, DecisionCompliant
}

func (p *Pipeline) note(res *Result, stage string, n int) {
	res.Counts[stage] = n
	p.rec.Stage(stage, n)
	p.log.Info("stage done", "stage", stage, "variants", n)
}

func (p *Pipeline) empty(res *Result, stage string, n int) bool {
	p.note(res, stage, n)
	if n > 0 {
		return false
	}
	res.StoppedAt = stage
	p.rec.Stopped(stage)
	p.log.Info("no variants left, stopping", "stage", stage)
	return true
}
