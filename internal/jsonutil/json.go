// internal/jsonutil/json.go
package jsonutil

import (
	"bufio"
	"encoding/json"
	"io"
)

// EncodePretty writes v as indented JSON to w.
func EncodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EncodeLines writes each element of list as one compact JSON line.
func EncodeLines[T any](w io.Writer, list []T) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	enc := json.NewEncoder(bw)
	for _, v := range list {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return bw.Flush()
}
