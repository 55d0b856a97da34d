// internal/cmdutil/exit.go
package cmdutil

import (
	"context"
	"errors"

	"ampliscreen/internal/diagnostic"
	"ampliscreen/internal/writers"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitUsage     = 2 // bad flags, bad config, unreadable input
	ExitRuntime   = 3 // screening or output failure
	ExitCancelled = 130
)

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// UsageError marks err as the caller's fault (exit 2).
func UsageError(err error) error {
	if err == nil {
		return nil
	}
	return usageError{err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var ue usageError
	switch {
	case err == nil, writers.IsBrokenPipe(err):
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.As(err, &ue), errors.Is(err, diagnostic.ErrConfiguration):
		return ExitUsage
	}
	return ExitRuntime
}
