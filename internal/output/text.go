// internal/output/text.go
package output

import (
	"bufio"
	"io"
	"strings"

	"ampliscreen/internal/variant"
)

// Header returns the TSV header for set.
func Header(set variant.Set, withScore bool) string {
	cols := append(append([]string{}, set.Header...), AnnotationColumns...)
	if withScore {
		cols = append(cols, ColQualityScore)
	}
	return strings.Join(cols, "\t")
}

// Row renders one TSV row (no trailing newline).
func Row(set variant.Set, v variant.Variant, withScore bool) string {
	cols := make([]string, 0, len(set.Header)+len(AnnotationColumns)+1)
	for i := range set.Header {
		cols = append(cols, inputField(set.Header, i, v))
	}
	cols = append(cols, annotationFields(v)...)
	if withScore {
		cols = append(cols, scoreField(v))
	}
	return strings.Join(cols, "\t")
}

// WriteTSV prints the input columns plus annotations, one line per variant.
func WriteTSV(w io.Writer, set variant.Set, o Options) error {
	bw := bufio.NewWriter(w)
	if o.Header {
		if _, err := io.WriteString(bw, Header(set, o.Score)+"\n"); err != nil {
			return err
		}
	}
	for _, v := range set.Variants {
		if _, err := io.WriteString(bw, Row(set, v, o.Score)+"\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
