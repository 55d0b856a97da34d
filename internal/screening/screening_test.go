package screening

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"ampliscreen/internal/diagnostic"
	"ampliscreen/internal/metrics"
	"ampliscreen/internal/pipeline"
	"ampliscreen/internal/variant"
)

// good returns a row that passes the quality gate and is diagnostic for 664c.
func good(chrom string, pos int, qual float64) variant.Variant {
	return variant.Variant{
		Chrom: chrom, Pos: pos,
		Alleles:      map[string]string{"664c": "A", "767c": "G"},
		Reliability:  variant.ReliabilityHigh,
		CompleteInfo: true, HasF2Data: true,
		Qual: qual, HasQual: true,
	}
}

func table(vs ...variant.Variant) variant.Set {
	for i := range vs {
		vs[i].Row = i
	}
	return variant.Set{Header: []string{"CHROM", "POS"}, Samples: []string{"664c", "767c"}, Variants: vs}
}

func opts() Options {
	o := DefaultOptions()
	o.Workers = 2
	return o
}

// countingScreener records calls and delegates to the amplicon screener.
type countingScreener struct {
	calls atomic.Int32
	inner pipeline.Screener
}

func (c *countingScreener) ScreenPartition(chrom string, g []variant.Variant) ([]variant.Variant, error) {
	c.calls.Add(1)
	return c.inner.ScreenPartition(chrom, g)
}

func TestRun_EndToEnd(t *testing.T) {
	in := table(
		good("1", 1000, 100),
		good("1", 1150, 300), // conflicts with 1000, both displaced
		good("1", 2500, 50),  // within 2000 of 1000: spaced out
		good("1", 5000, 900),
		good("2", 100, 10),
		good("2", 1140, 10),
	)
	p, err := New(opts())
	require.NoError(t, err)
	res, err := p.Run(context.Background(), in)
	require.NoError(t, err)
	require.Empty(t, res.StoppedAt)
	require.False(t, res.Fallback())

	var got []int
	for _, v := range res.Markers.Variants {
		got = append(got, v.Pos)
		require.True(t, v.Compliant)
		require.NotNil(t, v.Amplicon)
	}
	// spacing keeps 1:1000, 1:5000, 2:100; scores 8, 9 and 7.1
	require.Equal(t, []int{5000, 1000, 100}, got)
	require.Equal(t, 6, res.Counts[StageDiagnostic])
	require.Equal(t, in.Header, res.Markers.Header)
}

func TestRun_QualityGateEmptySkipsLaterStages(t *testing.T) {
	low := good("1", 10, 10)
	low.Reliability = variant.ReliabilityLow
	noF2 := good("1", 20, 10)
	noF2.HasF2Data = false
	incomplete := good("1", 30, 10)
	incomplete.CompleteInfo = false

	cs := &countingScreener{inner: pipeline.AmpliconScreener{Params: opts().Amplicon}}
	p, err := New(opts(), WithScreener(cs))
	require.NoError(t, err)

	// A missing target would be a configuration error if the filter ran.
	in := table(low, noF2, incomplete)
	in.Samples = []string{"other"}
	res, err := p.Run(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, StageQuality, res.StoppedAt)
	require.Empty(t, res.Markers.Variants)
	require.EqualValues(t, 0, cs.calls.Load())
	_, ran := res.Counts[StageDiagnostic]
	require.False(t, ran)
}

func TestRun_DiagnosticEmpty(t *testing.T) {
	v := good("1", 10, 10)
	v.Alleles = map[string]string{"664c": "N", "767c": "G"}
	p, err := New(opts())
	require.NoError(t, err)
	res, err := p.Run(context.Background(), table(v))
	require.NoError(t, err)
	require.Equal(t, StageDiagnostic, res.StoppedAt)
}

func TestRun_MissingTargetIsConfigurationError(t *testing.T) {
	o := opts()
	o.TargetSample = "nope"
	p, err := New(o)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), table(good("1", 10, 10)))
	require.ErrorIs(t, err, diagnostic.ErrConfiguration)
}

func TestRun_FallbackWhenNothingCompliant(t *testing.T) {
	// Every row conflicts with a neighbour beyond the step budget.
	in := table(good("1", 1000, 10), good("1", 1140, 20))
	var logs bytes.Buffer
	rec := metrics.New()
	p, err := New(opts(),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithMetrics(rec))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), in)
	require.NoError(t, err)
	require.True(t, res.Fallback())
	require.Equal(t, DecisionFallbackUnscreened, res.Decision)
	require.Contains(t, logs.String(), "level=WARN")
	require.Contains(t, logs.String(), "no primer compliant variants")
	const want = `
# HELP ampliscreen_compliance_fallback_total Runs that fell back to unscreened diagnostic variants.
# TYPE ampliscreen_compliance_fallback_total counter
ampliscreen_compliance_fallback_total 1
`
	require.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(want), "ampliscreen_compliance_fallback_total"))

	// spacing then keeps only 1000; it is unscreened and ranks without the bonus
	require.Len(t, res.Markers.Variants, 1)
	m := res.Markers.Variants[0]
	require.Equal(t, 1000, m.Pos)
	require.False(t, m.Compliant)
	require.Nil(t, m.Amplicon)
	require.InDelta(t, 3+2+1+0.1, m.Score, 1e-9)
}

func TestRetainCompliant(t *testing.T) {
	a := variant.Variant{Pos: 1, Compliant: true}
	b := variant.Variant{Pos: 2}
	kept, d := RetainCompliant([]variant.Variant{a, b}, nil)
	require.Equal(t, DecisionCompliant, d)
	require.Len(t, kept, 1)

	kept, d = RetainCompliant([]variant.Variant{b}, []variant.Variant{{Pos: 9}})
	require.Equal(t, DecisionFallbackUnscreened, d)
	require.Equal(t, 9, kept[0].Pos)
	require.Equal(t, "fallback-unscreened", d.String())
}

func TestRun_MaxMarkers(t *testing.T) {
	var vs []variant.Variant
	for i := 0; i < 30; i++ {
		vs = append(vs, good("1", 10000*(i+1), float64(i)))
	}
	o := opts()
	o.MaxMarkers = 7
	p, err := New(o)
	require.NoError(t, err)
	res, err := p.Run(context.Background(), table(vs...))
	require.NoError(t, err)
	require.Len(t, res.Markers.Variants, 7)
	require.Equal(t, 300000, res.Markers.Variants[0].Pos, "highest QUAL ranks first")
}

type failing struct{}

func (failing) ScreenPartition(string, []variant.Variant) ([]variant.Variant, error) {
	return nil, errors.New("disk on fire")
}

func TestRun_PartitionFailureSurfaces(t *testing.T) {
	p, err := New(opts(), WithScreener(failing{}))
	require.NoError(t, err)
	_, err = p.Run(context.Background(), table(good("1", 10, 1), good("2", 10, 1)))
	var pe *pipeline.PartitionError
	require.ErrorAs(t, err, &pe)
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())
	o := DefaultOptions()
	o.MinReliability = variant.ReliabilityUnknown
	require.ErrorIs(t, o.Validate(), diagnostic.ErrConfiguration)
	o = DefaultOptions()
	o.Amplicon.PrimerSize = 0
	require.Error(t, o.Validate())
	_, err := New(o)
	require.Error(t, err)
}

func TestProgressHook(t *testing.T) {
	var n atomic.Int32
	p, err := New(opts(), WithProgress(func(string) { n.Add(1) }))
	require.NoError(t, err)
	_, err = p.Run(context.Background(), table(good("1", 10, 1), good("2", 10, 1), good("3", 10, 1)))
	require.NoError(t, err)
	require.EqualValues(t, 3, n.Load())
}

func TestRun_MarkerCountBound(t *testing.T) {
	var vs []variant.Variant
	for i := 0; i < 5; i++ {
		vs = append(vs, good("1", 10000*(i+1), float64(i)))
	}
	for _, tc := range []struct {
		name    string
		max     int
		want    int
		stopped string
	}{
		{"zero", 0, 0, StageRank},
		{"equal to survivors", 5, 5, ""},
		{"above survivors", 6, 5, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			o := opts()
			o.MaxMarkers = tc.max
			p, err := New(o)
			require.NoError(t, err)
			res, err := p.Run(context.Background(), table(variant.Clone(vs)...))
			require.NoError(t, err)
			require.LessOrEqual(t, res.Markers.Len(), tc.max)
			require.Equal(t, tc.want, res.Markers.Len())
			require.Equal(t, tc.stopped, res.StoppedAt)
			require.Equal(t, tc.want, res.Counts[StageRank])
		})
	}
}

func TestScreenStartCountsScreenedPartitions(t *testing.T) {
	same := good("3", 10, 1)
	same.Alleles = map[string]string{"664c": "A", "767c": "A"}
	var partitions int
	var done atomic.Int32
	p, err := New(opts(),
		WithScreenStart(func(n int) { partitions = n }),
		WithProgress(func(string) { done.Add(1) }),
	)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), table(good("1", 10, 1), good("2", 10, 1), same))
	require.NoError(t, err)
	require.Equal(t, 2, partitions, "chromosome 3 has no diagnostic rows")
	require.EqualValues(t, partitions, done.Load())
}
