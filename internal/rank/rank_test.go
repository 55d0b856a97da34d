package rank

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"ampliscreen/internal/variant"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name string
		v    variant.Variant
		want float64
	}{
		{"bare unknown", variant.Variant{}, 1},
		{"low", variant.Variant{Reliability: variant.ReliabilityLow}, 1},
		{"medium complete", variant.Variant{Reliability: variant.ReliabilityMedium, CompleteInfo: true}, 4},
		{"high all flags", variant.Variant{Reliability: variant.ReliabilityHigh, CompleteInfo: true, HasF2Data: true, Compliant: true}, 7},
		{"qual partial", variant.Variant{Reliability: variant.ReliabilityHigh, Qual: 50, HasQual: true}, 3.5},
		{"qual capped", variant.Variant{Reliability: variant.ReliabilityHigh, Qual: 900, HasQual: true}, 5},
		{"qual missing", variant.Variant{Reliability: variant.ReliabilityHigh, Qual: 900}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, Score(tc.v), 1e-9)
		})
	}
}

func TestTop_OrderAndTruncate(t *testing.T) {
	in := []variant.Variant{
		{Pos: 1, Reliability: variant.ReliabilityMedium, Qual: 10, HasQual: true},
		{Pos: 2, Reliability: variant.ReliabilityHigh, Qual: 10, HasQual: true},
		{Pos: 3, Reliability: variant.ReliabilityHigh, Qual: 10, HasQual: true, Compliant: true},
		{Pos: 4, Reliability: variant.ReliabilityHigh, Qual: 500, HasQual: true}, // 5
		{Pos: 5, Reliability: variant.ReliabilityHigh, Qual: 300, HasQual: true}, // 5, lower QUAL
	}
	got := Top(in, 3)
	require.Len(t, got, 3)
	require.Equal(t, []int{4, 5, 3}, []int{got[0].Pos, got[1].Pos, got[2].Pos})
	require.InDelta(t, 5.0, got[0].Score, 1e-9)
	require.Zero(t, in[0].Score, "input not annotated")
}

func TestTop_MissingQualSortsLast(t *testing.T) {
	in := []variant.Variant{
		{Pos: 1, Reliability: variant.ReliabilityHigh, CompleteInfo: true},
		{Pos: 2, Reliability: variant.ReliabilityHigh, CompleteInfo: true, HasQual: true, Qual: 0},
	}
	got := Top(in, -1)
	require.Equal(t, 2, got[0].Pos)
	require.Equal(t, 1, got[1].Pos)
}

func TestTop_StableOnFullTie(t *testing.T) {
	var in []variant.Variant
	for i := 0; i < 20; i++ {
		in = append(in, variant.Variant{Pos: i, Reliability: variant.ReliabilityLow})
	}
	got := Top(in, 5)
	for i, v := range got {
		require.Equal(t, i, v.Pos)
	}
}

func TestTop_SortedAndBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	tiers := []variant.Reliability{variant.ReliabilityLow, variant.ReliabilityMedium, variant.ReliabilityHigh}
	var in []variant.Variant
	for i := 0; i < 1000; i++ {
		in = append(in, variant.Variant{
			Chrom:        fmt.Sprint(rng.Intn(5)),
			Pos:          i,
			Reliability:  tiers[rng.Intn(3)],
			CompleteInfo: rng.Intn(2) == 0,
			HasF2Data:    rng.Intn(2) == 0,
			Compliant:    rng.Intn(2) == 0,
			Qual:         float64(rng.Intn(400)),
			HasQual:      rng.Intn(4) != 0,
		})
	}
	got := Top(in, DefaultMaxMarkers)
	require.Len(t, got, DefaultMaxMarkers)
	for i := 1; i < len(got); i++ {
		require.False(t, Less(got[i], got[i-1]), "out of order at %d", i)
	}
	for i := range got {
		require.InDelta(t, Score(got[i]), got[i].Score, 1e-9)
	}
}

func TestTop_LimitBounds(t *testing.T) {
	in := []variant.Variant{{Pos: 1}, {Pos: 2}, {Pos: 3}}
	for _, tc := range []struct {
		limit, want int
	}{
		{0, 0},
		{2, 2},
		{3, 3},
		{4, 3},
		{-1, 3},
	} {
		require.Len(t, Top(in, tc.limit), tc.want, "limit %d", tc.limit)
	}
}
