// internal/output/json.go
package output

import (
	"io"

	"ampliscreen/internal/jsonutil"
	"ampliscreen/internal/variant"
	"ampliscreen/pkg/api"
)

// ToAPIMarker converts a variant to the stable wire schema (v1).
func ToAPIMarker(v variant.Variant, withScore bool) api.MarkerV1 {
	m := api.MarkerV1{
		Chrom:           v.Chrom,
		Pos:             v.Pos,
		Reliability:     v.Reliability.String(),
		CompleteInfo:    v.CompleteInfo,
		HasF2Data:       v.HasF2Data,
		Alleles:         v.Alleles,
		PrimerCompliant: v.Compliant,
		Displacement:    v.Displacement,
	}
	if v.HasQual {
		q := v.Qual
		m.Qual = &q
	}
	if v.Amplicon != nil {
		s, e := v.Amplicon.Start, v.Amplicon.End
		m.AmpliconStart, m.AmpliconEnd = &s, &e
	}
	if withScore {
		sc := v.Score
		m.QualityScore = &sc
	}
	return m
}

func toAPIMarkers(vs []variant.Variant, withScore bool) []api.MarkerV1 {
	out := make([]api.MarkerV1, 0, len(vs))
	for _, v := range vs {
		out = append(out, ToAPIMarker(v, withScore))
	}
	return out
}

// WriteJSON writes a single indented MarkerSetV1 document.
func WriteJSON(w io.Writer, set variant.Set, o Options) error {
	samples := set.Samples
	if samples == nil {
		samples = []string{}
	}
	return jsonutil.EncodePretty(w, api.MarkerSetV1{Samples: samples, Markers: toAPIMarkers(set.Variants, o.Score)})
}

// WriteJSONL writes one compact MarkerV1 per line.
func WriteJSONL(w io.Writer, set variant.Set, o Options) error {
	return jsonutil.EncodeLines(w, toAPIMarkers(set.Variants, o.Score))
}
