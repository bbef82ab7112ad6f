// internal/session/errors.go
package session

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/dorontal/scrapelog/internal/logline"
)

var (
	// ErrMissingEnd means the last line of the file is not an END directive
	ErrMissingEnd = errors.New("last line has no END directive")

	// ErrMissingStart means no START directive precedes the final END
	ErrMissingStart = errors.New("no START directive before END")

	// ErrDuplicateEnd means a second END was found before any START
	ErrDuplicateEnd = errors.New("second END directive found before START")

	// ErrEmptySession means the walk produced no lines
	ErrEmptySession = errors.New("session has no lines")
)

// Error reports why verification of a log file failed.
type Error struct {
	Path string
	// Line is the 1-based position of the offending line counted from the
	// end of the file, or 0 when the failure is not tied to a line.
	Line int
	Err  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("log file %s: line %d from end: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("log file %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Reason maps an error from this package to a short stable code suitable
// for storage. It returns "" for nil.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingEnd):
		return "missing_end"
	case errors.Is(err, ErrMissingStart):
		return "missing_start"
	case errors.Is(err, ErrDuplicateEnd):
		return "duplicate_end"
	case errors.Is(err, ErrEmptySession):
		return "empty_session"
	case errors.Is(err, logline.ErrMalformedTimestamp):
		return "malformed_timestamp"
	case errors.Is(err, logline.ErrUnknownSeverity):
		return "unknown_severity"
	case errors.Is(err, fs.ErrNotExist):
		return "not_found"
	default:
		return "io"
	}
}
