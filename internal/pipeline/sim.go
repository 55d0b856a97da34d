// internal/pipeline/sim.go
package pipeline

import (
	"ampliscreen/internal/amplicon"
	"ampliscreen/internal/variant"
)

// Screener is the minimal capability the coordinator needs.
// Any screener (including fakes in tests) can satisfy this.
type Screener interface {
	ScreenPartition(chrom string, group []variant.Variant) ([]variant.Variant, error)
}

// AmpliconScreener screens a partition with amplicon.ScreenChromosome.
type AmpliconScreener struct {
	Params amplicon.Params
}

func (s AmpliconScreener) ScreenPartition(_ string, group []variant.Variant) ([]variant.Variant, error) {
	return amplicon.ScreenChromosome(group, s.Params), nil
}
