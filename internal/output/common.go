package output

import (
	"strconv"

	"ampliscreen/internal/variant"
)

// Annotation columns appended after the input columns, in this order.
// quality_score is only written for ranked output.
const (
	ColPrimerCompliant = "primer_compliant"
	ColAmpliconStart   = "amplicon_start"
	ColAmpliconEnd     = "amplicon_end"
	ColDisplacement    = "displacement"
	ColQualityScore    = "quality_score"
)

// AnnotationColumns is the single source of truth for annotation order.
var AnnotationColumns = []string{ColPrimerCompliant, ColAmpliconStart, ColAmpliconEnd, ColDisplacement}

// Options select optional output parts.
type Options struct {
	Header bool // TSV header row
	Score  bool // include quality_score
}

// inputField renders column name of v. Rows read from a table reuse their raw
// text; rows built in code are rendered from their parsed fields.
func inputField(h []string, i int, v variant.Variant) string {
	if len(v.Fields) == len(h) {
		return v.Fields[i]
	}
	name := h[i]
	switch name {
	case variant.ColChrom:
		return v.Chrom
	case variant.ColPos:
		return strconv.Itoa(v.Pos)
	case variant.ColQual:
		if v.HasQual {
			return strconv.FormatFloat(v.Qual, 'g', -1, 64)
		}
		return ""
	case variant.ColReliability:
		if v.Reliability == variant.ReliabilityUnknown {
			return ""
		}
		return v.Reliability.String()
	case variant.ColComplete:
		return strconv.FormatBool(v.CompleteInfo)
	case variant.ColF2:
		return strconv.FormatBool(v.HasF2Data)
	}
	if n := len(name) - len(variant.AlleleSuffix); n > 0 && name[n:] == variant.AlleleSuffix {
		return v.Alleles[name[:n]]
	}
	return ""
}

func annotationFields(v variant.Variant) []string {
	start, end := "", ""
	if v.Amplicon != nil {
		start, end = strconv.Itoa(v.Amplicon.Start), strconv.Itoa(v.Amplicon.End)
	}
	return []string{strconv.FormatBool(v.Compliant), start, end, strconv.Itoa(v.Displacement)}
}

func scoreField(v variant.Variant) string {
	return strconv.FormatFloat(v.Score, 'f', 4, 64)
}
