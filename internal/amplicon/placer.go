// internal/amplicon/placer.go
package amplicon

import (
	"errors"
	"fmt"

	"ampliscreen/internal/variant"
)

// Params controls window geometry and the displacement search.
type Params struct {
	PrimerSize        int
	AmpliconSize      int
	DisplacementSteps int
	Exclusion         SelfExclusion
}

// DefaultParams mirrors the CLI defaults.
var DefaultParams = Params{PrimerSize: 20, AmpliconSize: 300, DisplacementSteps: 5}

// Validate rejects geometry no window can be built from.
// Overlapping primer regions (2*PrimerSize >= AmpliconSize) are allowed.
func (p Params) Validate() error {
	switch {
	case p.PrimerSize <= 0:
		return fmt.Errorf("primer size must be > 0 (got %d)", p.PrimerSize)
	case p.AmpliconSize <= 0:
		return fmt.Errorf("amplicon size must be > 0 (got %d)", p.AmpliconSize)
	case p.DisplacementSteps < 0:
		return errors.New("displacement steps must be >= 0")
	}
	return nil
}

// Centered returns [pos - size/2, pos + size/2] using floor division.
func Centered(pos, size int) variant.Window {
	half := size / 2
	return variant.Window{Start: pos - half, End: pos + half}
}

// Forward is the forward primer region of w.
func Forward(w variant.Window, primer int) Region { return Region{w.Start, w.Start + primer} }

// Reverse is the reverse primer region of w.
func Reverse(w variant.Window, primer int) Region { return Region{w.End - primer, w.End} }

func shift(w variant.Window, d int) variant.Window {
	return variant.Window{Start: w.Start + d, End: w.End + d}
}

// Placement is the outcome of a placement search.
type Placement struct {
	Compliant    bool
	Window       variant.Window // zero unless Compliant
	Displacement int
}

// Place searches for a conflict-free window for the variant at pos.
func Place(pos int, others Others, p Params) Placement {
	free := func(w variant.Window) bool {
		return !others.Conflicts(Forward(w, p.PrimerSize)) && !others.Conflicts(Reverse(w, p.PrimerSize))
	}

	base := Centered(pos, p.AmpliconSize)
	if free(base) {
		return Placement{Compliant: true, Window: base}
	}
	for step := 1; step <= p.DisplacementSteps; step++ {
		for _, dir := range [...]int{-1, 1} {
			d := dir * step
			w := shift(base, d)
			if pos < w.Start || pos > w.End {
				continue
			}
			if free(w) {
				return Placement{Compliant: true, Window: w, Displacement: d}
			}
		}
	}
	return Placement{}
}
