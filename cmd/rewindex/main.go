// Command rewindex is the CLI entry point for time-travel code search.
package main

import (
	"fmt"
	"os"

	"github.com/ryrobes/rewindex/cmd/rewindex/cmd"
	"github.com/ryrobes/rewindex/internal/apperrors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidArgument, apperrors.KindParseError:
		return 2
	case apperrors.KindNotFound:
		return 3
	case apperrors.KindConflict:
		return 4
	case apperrors.KindBackendUnreachable, apperrors.KindBackendReportedError, apperrors.KindIOError:
		return 5
	default:
		return 1
	}
}
