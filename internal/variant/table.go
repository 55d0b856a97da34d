// internal/variant/table.go
package variant

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Column names of the tabular contract.
const (
	ColChrom       = "CHROM"
	ColPos         = "POS"
	ColQual        = "QUAL"
	ColReliability = "overall_reliability"
	ColComplete    = "complete_info"
	ColF2          = "has_f2_data"
	AlleleSuffix   = "_allele"
)

// AlleleColumn is the header name holding sample's allele.
func AlleleColumn(sample string) string { return sample + AlleleSuffix }

// LoadTable reads a variant table from path ("-" is stdin).
// Files ending in .csv are comma separated; everything else is tab separated.
func LoadTable(path string) (Set, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		fh, err := os.Open(path)
		if err != nil {
			return Set{}, err
		}
		defer func() { _ = fh.Close() }()
		r = fh
	}
	delim := '\t'
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		delim = ','
	}
	s, err := ReadTable(r, delim)
	if err != nil {
		return Set{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadTable parses a header row followed by one variant per row.
// Row errors carry the 1-based input line.
func ReadTable(r io.Reader, delim rune) (Set, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	if delim == '\t' {
		cr.LazyQuotes = true
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Set{}, errors.New("line 1: empty table")
	}
	if err != nil {
		return Set{}, fmt.Errorf("line 1: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, req := range []string{ColChrom, ColPos} {
		if _, ok := idx[req]; !ok {
			return Set{}, fmt.Errorf("line 1: missing required column %q", req)
		}
	}

	var samples []string
	var sampleCols []int
	for i, h := range header {
		if strings.HasSuffix(h, AlleleSuffix) && len(h) > len(AlleleSuffix) {
			samples = append(samples, strings.TrimSuffix(h, AlleleSuffix))
			sampleCols = append(sampleCols, i)
		}
	}

	set := Set{Header: header, Samples: samples}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Set{}, err
		}
		v, err := parseRow(rec, idx, samples, sampleCols)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return Set{}, fmt.Errorf("line %d: %w", line, err)
		}
		v.Row = len(set.Variants)
		set.Variants = append(set.Variants, v)
	}
	return set, nil
}

func parseRow(rec []string, idx map[string]int, samples []string, sampleCols []int) (Variant, error) {
	field := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	v := Variant{Chrom: field(ColChrom), Fields: rec}
	if v.Chrom == "" {
		return v, errors.New("empty CHROM")
	}
	pos, err := strconv.Atoi(field(ColPos))
	if err != nil {
		return v, fmt.Errorf("bad POS: %v", err)
	}
	if pos < 0 {
		return v, fmt.Errorf("negative POS %d", pos)
	}
	v.Pos = pos

	v.Alleles = make(map[string]string, len(samples))
	for i, s := range samples {
		a := ""
		if c := sampleCols[i]; c < len(rec) {
			a = strings.TrimSpace(rec[c])
		}
		v.Alleles[s] = a
	}

	v.Reliability = ParseReliability(field(ColReliability))
	v.CompleteInfo = parseFlag(field(ColComplete))
	v.HasF2Data = parseFlag(field(ColF2))
	if q, err := strconv.ParseFloat(field(ColQual), 64); err == nil && !math.IsNaN(q) {
		v.Qual, v.HasQual = q, true
	}
	return v, nil
}

// parseFlag accepts strconv.ParseBool spellings; anything else (including "") is false.
func parseFlag(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
