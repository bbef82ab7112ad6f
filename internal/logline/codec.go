// internal/logline/codec.go
package logline

import (
	"errors"
	"fmt"
	"time"
)

// FormatVersion identifies the line layout below. Any change to the
// timestamp width, label spelling or separators must bump it, and the
// log writer must change with it.
//
//	YYYY-MM-DD HH:MM:SS[,mmm] <LABEL> <message>
const FormatVersion = 1

const (
	// TimestampLayout is the timestamp written at the start of every line.
	TimestampLayout = "2006-01-02 15:04:05"

	// timestampMillisLayout is the variant Python-style formatters emit.
	timestampMillisLayout = "2006-01-02 15:04:05,000"

	separator = ' '
)

var (
	// ErrMalformedTimestamp is returned when a line does not start with a timestamp
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrUnknownSeverity is returned when the severity label is not recognised
	ErrUnknownSeverity = errors.New("unknown severity")
)

// Line is one parsed log record
type Line struct {
	Time     time.Time `json:"time"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// ParseError describes a raw line that could not be parsed
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	raw := e.Raw
	if len(raw) > 80 {
		raw = raw[:77] + "..."
	}
	return fmt.Sprintf("parse log line %q: %v", raw, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes a raw line (without trailing newline).
// Timestamps carry no zone and are returned as UTC wall-clock values.
func Parse(raw string) (Line, error) {
	ts, rest, err := parseTimestamp(raw)
	if err != nil {
		return Line{}, &ParseError{Raw: raw, Err: err}
	}

	sevPos := len(raw) - len(rest)
	if len(rest) == 0 {
		return Line{}, &ParseError{Raw: raw, Err: fmt.Errorf("%w: missing at offset %d", ErrUnknownSeverity, sevPos)}
	}

	sev, ok := severityFromLetter(rest[0])
	if !ok {
		return Line{}, &ParseError{Raw: raw, Err: fmt.Errorf("%w: %q at offset %d", ErrUnknownSeverity, rest[0], sevPos)}
	}

	// The discriminator picked the label; make sure the whole label is there
	// so a changed writer format fails here instead of shifting the message.
	label := labels[sev]
	if len(rest) < len(label) || rest[:len(label)] != label {
		return Line{}, &ParseError{Raw: raw, Err: fmt.Errorf("%w: expected %s at offset %d", ErrUnknownSeverity, label, sevPos)}
	}
	rest = rest[len(label):]

	var msg string
	if len(rest) > 0 {
		if rest[0] != separator {
			return Line{}, &ParseError{Raw: raw, Err: fmt.Errorf("%w: no separator after %s", ErrUnknownSeverity, label)}
		}
		msg = rest[1:]
	}

	return Line{Time: ts, Severity: sev, Message: msg}, nil
}

// parseTimestamp reads the leading timestamp and its trailing separator and
// returns the remainder of the line.
func parseTimestamp(raw string) (time.Time, string, error) {
	layout := TimestampLayout
	if len(raw) > len(TimestampLayout) && raw[len(TimestampLayout)] == ',' {
		layout = timestampMillisLayout
	}

	if len(raw) < len(layout) {
		return time.Time{}, "", fmt.Errorf("%w: line shorter than %d bytes", ErrMalformedTimestamp, len(layout))
	}

	ts, err := time.ParseInLocation(layout, raw[:len(layout)], time.UTC)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrMalformedTimestamp, err)
	}

	rest := raw[len(layout):]
	if len(rest) == 0 || rest[0] != separator {
		return time.Time{}, "", fmt.Errorf("%w: no separator after timestamp", ErrMalformedTimestamp)
	}
	return ts, rest[1:], nil
}

// Format renders l in the layout Parse reads.
func Format(l Line) string {
	return l.Time.UTC().Format(TimestampLayout) + string(separator) + l.Severity.Label() + string(separator) + l.Message
}
