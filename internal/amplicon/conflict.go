// internal/amplicon/conflict.go
package amplicon

import "sort"

// Region is an inclusive coordinate range.
type Region struct {
	Low, High int
}

// Contains reports whether p lies in [Low, High].
func (r Region) Contains(p int) bool { return r.Low <= p && p <= r.High }

// HasConflict reports whether any of positions lies inside r. Boundaries count.
func HasConflict(positions []int, r Region) bool {
	for _, p := range positions {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// Positions is a sorted multiset of variant positions.
type Positions []int

// NewPositions copies and sorts ps.
func NewPositions(ps []int) Positions {
	out := make(Positions, len(ps))
	copy(out, ps)
	sort.Ints(out)
	return out
}

// Count returns how many positions lie in r.
func (ps Positions) Count(r Region) int {
	if r.High < r.Low {
		return 0
	}
	lo := sort.SearchInts(ps, r.Low)
	hi := lo + sort.SearchInts(ps[lo:], r.High+1)
	return hi - lo
}

// HasConflict is the binary-search form of the package-level HasConflict.
func (ps Positions) HasConflict(r Region) bool { return ps.Count(r) > 0 }

// SelfExclusion decides which entries of the chromosome's position multiset
// stand for the variant being placed.
type SelfExclusion int

const (
	// ExcludeByValue drops every position equal to the variant's own,
	// including distinct variants that share it.
	ExcludeByValue SelfExclusion = iota
	// ExcludeByIdentity drops exactly one entry (the variant's own row), so a
	// second variant at the same position still conflicts.
	ExcludeByIdentity
)

func (m SelfExclusion) String() string {
	if m == ExcludeByIdentity {
		return "identity"
	}
	return "value"
}

// Others is the "every other variant" view of a chromosome for one variant.
type Others struct {
	all  Positions
	self int
	mode SelfExclusion
}

// OthersOf returns the view of all that excludes the variant at pos.
// all must contain pos (the variant's own entry).
func OthersOf(all Positions, pos int, mode SelfExclusion) Others {
	return Others{all: all, self: pos, mode: mode}
}

// Conflicts reports whether r holds a position other than the variant's own.
func (o Others) Conflicts(r Region) bool {
	n := o.all.Count(r)
	if n == 0 || !r.Contains(o.self) {
		return n > 0
	}
	switch o.mode {
	case ExcludeByIdentity:
		n--
	default:
		n -= o.all.Count(Region{o.self, o.self})
	}
	return n > 0
}
