// Package rank scores screened variants and keeps the best ones.
package rank

import (
	"math"
	"sort"

	"github.com/exascience/pargo/parallel"

	"ampliscreen/internal/variant"
)

// DefaultMaxMarkers bounds the final marker set.
const DefaultMaxMarkers = 50

var tierScore = map[variant.Reliability]float64{
	variant.ReliabilityLow:    1,
	variant.ReliabilityMedium: 2,
	variant.ReliabilityHigh:   3,
}

// Score is the additive marker quality:
//
//	tier (low=1, medium=2, high=3, unknown=1)
//	+2 complete info, +1 F2 data, +min(2, QUAL/100), +1 primer compliant
func Score(v variant.Variant) float64 {
	s, ok := tierScore[v.Reliability]
	if !ok {
		s = 1
	}
	if v.CompleteInfo {
		s += 2
	}
	if v.HasF2Data {
		s += 1
	}
	if v.HasQual {
		s += math.Min(2, v.Qual/100)
	}
	if v.Compliant {
		s += 1
	}
	return s
}

// ScoreAll returns copies of vs with Score set. Scoring runs in parallel
// chunks; order is preserved.
func ScoreAll(vs []variant.Variant) []variant.Variant {
	out := variant.Clone(vs)
	parallel.Range(0, len(out), 0, func(low, high int) {
		for i := low; i < high; i++ {
			out[i].Score = Score(out[i])
		}
	})
	return out
}

// Less orders by Score then QUAL, both descending. A missing QUAL ranks
// below any present one.
func Less(a, b variant.Variant) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.HasQual != b.HasQual {
		return a.HasQual
	}
	return a.Qual > b.Qual
}

// Top scores vs, sorts stably with Less and keeps the first limit entries.
// A negative limit keeps everything; 0 keeps nothing.
func Top(vs []variant.Variant, limit int) []variant.Variant {
	out := ScoreAll(vs)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
