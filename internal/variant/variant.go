// Package variant holds the candidate marker record and the tabular set that
// flows through the screening stages.
//
// Records are values. Stages copy a record and set its annotation fields;
// they never write through to the caller's slice.
package variant

import "strings"

// Reliability is the ordered overall_reliability tier of a variant call.
type Reliability int

const (
	ReliabilityUnknown Reliability = iota
	ReliabilityLow
	ReliabilityMedium
	ReliabilityHigh
)

// ParseReliability maps low/medium/high (case-insensitive) to a tier.
// Anything else is ReliabilityUnknown.
func ParseReliability(s string) Reliability {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ReliabilityLow
	case "medium":
		return ReliabilityMedium
	case "high":
		return ReliabilityHigh
	}
	return ReliabilityUnknown
}

func (r Reliability) String() string {
	switch r {
	case ReliabilityLow:
		return "low"
	case ReliabilityMedium:
		return "medium"
	case ReliabilityHigh:
		return "high"
	}
	return "unknown"
}

// Window is an amplicon window in reference coordinates, inclusive at both ends.
type Window struct {
	Start int
	End   int
}

// Variant is one candidate marker row.
type Variant struct {
	// Identity
	Chrom string
	Pos   int
	Row   int // input row index; distinct even when (Chrom, Pos) repeats

	// Inputs
	Alleles      map[string]string // sample id -> allele ("" when empty)
	Reliability  Reliability
	CompleteInfo bool
	HasF2Data    bool
	Qual         float64
	HasQual      bool
	Fields       []string // raw input row, aligned with Set.Header

	// Annotations
	Compliant    bool
	Amplicon     *Window // nil until a conflict-free window is found
	Displacement int
	Score        float64
}

// Allele returns the allele of sample and whether the row has that sample at all.
func (v Variant) Allele(sample string) (string, bool) {
	a, ok := v.Alleles[sample]
	return a, ok
}

// Set is a table of variants sharing one header.
type Set struct {
	Header   []string
	Samples  []string // sample ids with a <id>_allele column, in header order
	Variants []Variant
}

// HasSample reports whether the set carries an allele column for id.
func (s Set) HasSample(id string) bool {
	for _, x := range s.Samples {
		if x == id {
			return true
		}
	}
	return false
}

// With returns a set with the same columns and the given rows.
func (s Set) With(vs []Variant) Set {
	return Set{Header: s.Header, Samples: s.Samples, Variants: vs}
}

// Len is the row count.
func (s Set) Len() int { return len(s.Variants) }

// Clone copies the slice of records; maps and raw fields stay shared read-only.
func Clone(vs []Variant) []Variant {
	if vs == nil {
		return nil
	}
	out := make([]Variant, len(vs))
	copy(out, vs)
	return out
}
