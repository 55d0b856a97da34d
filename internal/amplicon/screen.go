// internal/amplicon/screen.go
package amplicon

import "ampliscreen/internal/variant"

// ScreenChromosome places every variant of one chromosome group and returns
// annotated copies in input order. Positions are snapshotted before the loop,
// so one variant's result never feeds into another's conflict check.
// Prior annotations on the input are ignored.
func ScreenChromosome(group []variant.Variant, p Params) []variant.Variant {
	raw := make([]int, len(group))
	for i, v := range group {
		raw[i] = v.Pos
	}
	all := NewPositions(raw)

	out := make([]variant.Variant, len(group))
	for i, v := range group {
		pl := Place(v.Pos, OthersOf(all, v.Pos, p.Exclusion), p)
		out[i] = Annotate(v, pl)
	}
	return out
}

// Annotate overlays pl onto a copy of v.
func Annotate(v variant.Variant, pl Placement) variant.Variant {
	v.Compliant = pl.Compliant
	v.Displacement = pl.Displacement
	v.Amplicon = nil
	if pl.Compliant {
		w := pl.Window
		v.Amplicon = &w
	}
	return v
}
