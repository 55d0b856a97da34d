// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"ampliscreen/internal/output"
	"ampliscreen/internal/variant"
)

// WriteFunc renders a whole set to w.
type WriteFunc func(w io.Writer, set variant.Set, o output.Options) error

// Formats registry (format → handler). Last registration wins.
var formats = map[string]WriteFunc{}

func Register(format string, fn WriteFunc) { formats[format] = fn }

func init() {
	Register("text", output.WriteTSV)
	Register("json", output.WriteJSON)
	Register("jsonl", output.WriteJSONL)
}

// Formats lists registered format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(formats))
	for k := range formats {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Known reports whether format has a writer.
func Known(format string) bool {
	_, ok := formats[format]
	return ok
}

// Write dispatches to the writer registered for format.
func Write(format string, w io.Writer, set variant.Set, o output.Options) error {
	fn, ok := formats[format]
	if !ok {
		return fmt.Errorf("unknown output format %q (no writer registered)", format)
	}
	return fn(w, set, o)
}
