// internal/pipeline/partition.go
package pipeline

import "ampliscreen/internal/variant"

// Partition is one chromosome's rows in input order.
type Partition struct {
	Chrom    string
	Variants []variant.Variant
}

// Split groups vs by chromosome. Partitions appear in the order their
// chromosome is first seen; each owns a fresh copy of its rows.
func Split(vs []variant.Variant) []Partition {
	var parts []Partition
	at := make(map[string]int)
	for _, v := range vs {
		i, ok := at[v.Chrom]
		if !ok {
			i = len(parts)
			at[v.Chrom] = i
			parts = append(parts, Partition{Chrom: v.Chrom})
		}
		parts[i].Variants = append(parts[i].Variants, v)
	}
	return parts
}

// Merge concatenates partitions in slice order.
func Merge(parts []Partition) []variant.Variant {
	n := 0
	for _, p := range parts {
		n += len(p.Variants)
	}
	out := make([]variant.Variant, 0, n)
	for _, p := range parts {
		out = append(out, p.Variants...)
	}
	return out
}
