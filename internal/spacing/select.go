// Package spacing thins variants so that selected markers on a chromosome
// sit at least a minimum distance apart.
package spacing

import (
	"sort"

	"ampliscreen/internal/variant"
)

// Default minimum spacings. The full screening pipeline spaces markers more
// widely than the standalone filter.
const (
	DefaultPipelineSpacing   = 2000
	DefaultStandaloneSpacing = 1000
)

// SortByLocus sorts copies of vs by (Chrom, Pos), keeping input order on ties.
func SortByLocus(vs []variant.Variant) []variant.Variant {
	out := variant.Clone(vs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Chrom != out[j].Chrom {
			return out[i].Chrom < out[j].Chrom
		}
		return out[i].Pos < out[j].Pos
	})
	return out
}

// Select sweeps the sorted variants once, keeping a variant when it is the
// first on its chromosome or lies at least minSpacing past the last kept one.
// The sweep is greedy and never revisits an earlier choice.
func Select(vs []variant.Variant, minSpacing int) []variant.Variant {
	if len(vs) == 0 {
		return nil
	}
	sorted := SortByLocus(vs)
	last := make(map[string]int)
	out := make([]variant.Variant, 0, len(sorted))
	for _, v := range sorted {
		if prev, ok := last[v.Chrom]; ok && v.Pos-prev < minSpacing {
			continue
		}
		last[v.Chrom] = v.Pos
		out = append(out, v)
	}
	return out
}
