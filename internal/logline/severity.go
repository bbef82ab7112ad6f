// internal/logline/severity.go
package logline

import (
	"fmt"
	"strings"
)

// Severity is the level a log line was written at
type Severity int

const (
	Debug Severity = iota
	Info
	Warning
	Error
	Critical
)

// labels are the literal strings the log writer prints for each level.
// The message offset of a line is derived from these widths.
var labels = [...]string{
	Debug:    "DEBUG",
	Info:     "INFO",
	Warning:  "WARNING",
	Error:    "ERROR",
	Critical: "CRITICAL",
}

// Severities lists every level from least to most severe
var Severities = []Severity{Debug, Info, Warning, Error, Critical}

// Label returns the label as it appears in the log file.
func (s Severity) Label() string {
	if !s.valid() {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return labels[s]
}

// Letter returns the single discriminating character of the label.
func (s Severity) Letter() byte {
	if !s.valid() {
		return '?'
	}
	return labels[s][0]
}

func (s Severity) String() string {
	return s.Label()
}

func (s Severity) valid() bool {
	return s >= Debug && s <= Critical
}

// MarshalText encodes the severity as its label.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(labels[s]), nil
}

// UnmarshalText accepts a label in any case.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity maps a label (case-insensitive, "WARN" accepted) to a Severity.
func ParseSeverity(label string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "DEBUG":
		return Debug, nil
	case "INFO":
		return Info, nil
	case "WARNING", "WARN":
		return Warning, nil
	case "ERROR":
		return Error, nil
	case "CRITICAL":
		return Critical, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSeverity, label)
}

// severityFromLetter resolves the discriminator character of a raw line.
func severityFromLetter(c byte) (Severity, bool) {
	for _, s := range Severities {
		if labels[s][0] == c {
			return s, true
		}
	}
	return 0, false
}
