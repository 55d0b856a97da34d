// pkg/api/markers_v1.go
package api

// MarkerV1 is the stable JSON schema for a screened marker.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type MarkerV1 struct {
	Chrom           string            `json:"chrom"`
	Pos             int               `json:"pos"`
	Qual            *float64          `json:"qual,omitempty"`
	Reliability     string            `json:"overall_reliability"`
	CompleteInfo    bool              `json:"complete_info"`
	HasF2Data       bool              `json:"has_f2_data"`
	Alleles         map[string]string `json:"alleles,omitempty"`
	PrimerCompliant bool              `json:"primer_compliant"`
	AmpliconStart   *int              `json:"amplicon_start"` // null when no window was found
	AmpliconEnd     *int              `json:"amplicon_end"`
	Displacement    int               `json:"displacement"`
	QualityScore    *float64          `json:"quality_score,omitempty"` // final selections only
}

// MarkerSetV1 wraps a run's markers with the columns they came from.
type MarkerSetV1 struct {
	Samples []string   `json:"samples"`
	Markers []MarkerV1 `json:"markers"`
}
