package amplicon

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"ampliscreen/internal/variant"
)

func place(pos int, others []int, p Params) Placement {
	all := NewPositions(append([]int{pos}, others...))
	return Place(pos, OthersOf(all, pos, p.Exclusion), p)
}

func TestCenteredAndPrimerRegions(t *testing.T) {
	w := Centered(1000, 300)
	require.Equal(t, variant.Window{Start: 850, End: 1150}, w)
	require.Equal(t, Region{850, 870}, Forward(w, 20))
	require.Equal(t, Region{1130, 1150}, Reverse(w, 20))

	// odd sizes use floor division on both sides
	require.Equal(t, variant.Window{Start: 50, End: 150}, Centered(100, 101))
}

func TestPlace_CenteredAccepted(t *testing.T) {
	pl := place(5000, []int{1000, 1015}, DefaultParams)
	require.True(t, pl.Compliant)
	require.Equal(t, 0, pl.Displacement)
	require.Equal(t, variant.Window{Start: 4850, End: 5150}, pl.Window)
}

func TestPlace_OneBaseShiftClearsBoundary(t *testing.T) {
	// 1150 sits on the reverse primer's upper bound.
	pl := place(1000, []int{1150}, DefaultParams)
	require.True(t, pl.Compliant)
	require.Equal(t, -1, pl.Displacement)
	require.Equal(t, variant.Window{Start: 849, End: 1149}, pl.Window)
}

func TestPlace_LeftBeforeRight(t *testing.T) {
	// Forward region [850,852] holds 851. Both ±1 still cover it; at step 2
	// both -2 and +2 are clean and left is tried first.
	p := Params{PrimerSize: 2, AmpliconSize: 300, DisplacementSteps: 5}
	pl := place(1000, []int{851}, p)
	require.True(t, pl.Compliant)
	require.Equal(t, -2, pl.Displacement)
}

func TestPlace_RightWhenLeftFails(t *testing.T) {
	pl := place(1000, []int{850}, DefaultParams)
	require.True(t, pl.Compliant)
	require.Equal(t, 1, pl.Displacement)
	require.Equal(t, variant.Window{Start: 851, End: 1151}, pl.Window)
}

func TestPlace_FirstHitStopsSearch(t *testing.T) {
	// 1140 needs a shift of 11 to clear; with 5 steps there is none.
	pl := place(1000, []int{1140}, DefaultParams)
	require.False(t, pl.Compliant)
	require.Equal(t, 0, pl.Displacement)
	require.Equal(t, variant.Window{}, pl.Window)

	p := DefaultParams
	p.DisplacementSteps = 15
	pl = place(1000, []int{1140}, p)
	require.True(t, pl.Compliant)
	require.Equal(t, -11, pl.Displacement)
}

func TestPlace_VariantMustStayInsideWindow(t *testing.T) {
	// Only a +5 shift is conflict-free, and it pushes 100 out of [103,107].
	p := Params{PrimerSize: 1, AmpliconSize: 4, DisplacementSteps: 5}
	pl := place(100, []int{97, 98, 99, 101, 102}, p)
	require.False(t, pl.Compliant)
}

func TestPlace_ZeroStepsOnlyTriesCenter(t *testing.T) {
	p := DefaultParams
	p.DisplacementSteps = 0
	pl := place(1000, []int{1150}, p)
	require.False(t, pl.Compliant)
}

func TestPlace_OverlappingPrimersAllowed(t *testing.T) {
	// 2*primer >= amplicon: the regions overlap and cover the variant.
	p := Params{PrimerSize: 2, AmpliconSize: 4, DisplacementSteps: 2}
	require.NoError(t, p.Validate())

	pl := place(100, []int{100}, p)
	require.True(t, pl.Compliant, "by value, a duplicate position is not a conflict")

	p.Exclusion = ExcludeByIdentity
	pl = place(100, []int{100}, p)
	require.False(t, pl.Compliant, "by identity, the duplicate blocks every window")
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams.Validate())
	require.Error(t, Params{PrimerSize: 0, AmpliconSize: 300}.Validate())
	require.Error(t, Params{PrimerSize: 20, AmpliconSize: 0}.Validate())
	require.Error(t, Params{PrimerSize: 20, AmpliconSize: 300, DisplacementSteps: -1}.Validate())
}

// Compliant windows have clean primer regions; non-compliant variants have
// no clean window within the step budget.
func TestPlace_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := DefaultParams
	for trial := 0; trial < 300; trial++ {
		n := 2 + rng.Intn(30)
		raw := make([]int, n)
		for i := range raw {
			raw[i] = rng.Intn(3000)
		}
		all := NewPositions(raw)
		for _, pos := range raw {
			var others []int
			for _, q := range raw {
				if q != pos {
					others = append(others, q)
				}
			}
			clean := func(w variant.Window) bool {
				return !HasConflict(others, Forward(w, p.PrimerSize)) && !HasConflict(others, Reverse(w, p.PrimerSize))
			}

			pl := Place(pos, OthersOf(all, pos, ExcludeByValue), p)
			if pl.Compliant {
				require.True(t, clean(pl.Window))
				require.True(t, pl.Window.Start <= pos && pos <= pl.Window.End)
				require.Equal(t, pl.Displacement, pl.Window.Start-Centered(pos, p.AmpliconSize).Start)
				continue
			}
			base := Centered(pos, p.AmpliconSize)
			require.False(t, clean(base))
			for d := -p.DisplacementSteps; d <= p.DisplacementSteps; d++ {
				w := shift(base, d)
				if w.Start <= pos && pos <= w.End {
					require.False(t, clean(w), "pos %d shift %d", pos, d)
				}
			}
		}
	}
}
