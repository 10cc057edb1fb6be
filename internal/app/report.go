package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/samvad-hq/samvad-event-sender/pkg/publishers"
)

// UsageText is printed when the argument count is wrong.
const UsageText = "Usage: send-event <connection_string> <message_body>"

// Process exit statuses. Every failure class shares ExitFailure.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// ExitCode maps a Send result onto the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return ExitFailure
}

// Report writes the user-facing text for err to w and returns the exit status.
func Report(w io.Writer, err error) int {
	var unavailable *UnavailableError
	switch {
	case err == nil:
	case errors.Is(err, ErrUsage):
		fmt.Fprintln(w, UsageText)
	case errors.As(err, &unavailable):
		fmt.Fprintln(w, publishers.InstallHint(unavailable.Type))
	default:
		fmt.Fprintf(w, "send-event: %v\n", err)
	}
	return ExitCode(err)
}
