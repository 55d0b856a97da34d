// Package diagnostic keeps variants whose target sample allele tells it apart
// from every other sample.
package diagnostic

import (
	"errors"
	"fmt"

	"ampliscreen/internal/variant"
)

// ErrConfiguration marks a filter request the input table cannot answer.
var ErrConfiguration = errors.New("configuration error")

// IsNoCall reports whether an allele value is a missing call.
func IsNoCall(a string) bool {
	switch a {
	case "", "N", "n", ".":
		return true
	}
	return false
}

// Diagnostic reports whether v's target allele is called and differs from
// every other called allele in the row. Other no-calls are ignored.
func Diagnostic(v variant.Variant, target string, others []string) bool {
	ta, _ := v.Allele(target)
	if IsNoCall(ta) {
		return false
	}
	for _, s := range others {
		a, _ := v.Allele(s)
		if !IsNoCall(a) && a == ta {
			return false
		}
	}
	return true
}

// Filter returns the diagnostic rows of set for target. A set without a
// <target>_allele column is an ErrConfiguration, never an empty result.
func Filter(set variant.Set, target string) (variant.Set, error) {
	if !set.HasSample(target) {
		return variant.Set{}, fmt.Errorf("%w: target sample column %q not found (have %v)",
			ErrConfiguration, variant.AlleleColumn(target), set.Samples)
	}
	others := make([]string, 0, len(set.Samples))
	for _, s := range set.Samples {
		if s != target {
			others = append(others, s)
		}
	}
	out := make([]variant.Variant, 0, len(set.Variants))
	for _, v := range set.Variants {
		if Diagnostic(v, target, others) {
			out = append(out, v)
		}
	}
	return set.With(out), nil
}
