// internal/cmdutil/log.go
package cmdutil

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger on dst. quiet keeps warnings and errors
// only; verbose adds debug records. quiet wins over verbose.
func NewLogger(dst io.Writer, quiet, verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	switch {
	case quiet:
		lvl = slog.LevelWarn
	case verbose:
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(dst, &slog.HandlerOptions{Level: lvl}))
}
