// internal/logline/codec_test.go
package logline

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFormatParseFixedPoint(t *testing.T) {
	ts := time.Date(2017, 3, 14, 9, 26, 53, 0, time.UTC)

	for _, sev := range Severities {
		t.Run(sev.Label(), func(t *testing.T) {
			want := Line{Time: ts, Severity: sev, Message: "START scraping http://example.com/feed"}
			raw := Format(want)

			got, err := Parse(raw)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", raw, err)
			}
			if !got.Time.Equal(want.Time) {
				t.Errorf("Time = %v, want %v", got.Time, want.Time)
			}
			if got.Severity != want.Severity {
				t.Errorf("Severity = %v, want %v", got.Severity, want.Severity)
			}
			if got.Message != want.Message {
				t.Errorf("Message = %q, want %q", got.Message, want.Message)
			}
		})
	}
}

func TestParseMessageOffsets(t *testing.T) {
	tests := []struct {
		raw     string
		sev     Severity
		message string
	}{
		{"2017-01-02 03:04:05 DEBUG hello", Debug, "hello"},
		{"2017-01-02 03:04:05 INFO hello", Info, "hello"},
		{"2017-01-02 03:04:05 WARNING hello", Warning, "hello"},
		{"2017-01-02 03:04:05 ERROR hello", Error, "hello"},
		{"2017-01-02 03:04:05 CRITICAL hello", Critical, "hello"},
		{"2017-01-02 03:04:05 INFO", Info, ""},
		{"2017-01-02 03:04:05 INFO ", Info, ""},
		{"2017-01-02 03:04:05 INFO   padded ", Info, "  padded "},
		{"2017-01-02 03:04:05,123 WARNING with millis", Warning, "with millis"},
	}

	for _, tt := range tests {
		got, err := Parse(tt.raw)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.raw, err)
			continue
		}
		if got.Severity != tt.sev {
			t.Errorf("Parse(%q).Severity = %v, want %v", tt.raw, got.Severity, tt.sev)
		}
		if got.Message != tt.message {
			t.Errorf("Parse(%q).Message = %q, want %q", tt.raw, got.Message, tt.message)
		}
	}
}

func TestParseMillis(t *testing.T) {
	got, err := Parse("2017-01-02 03:04:05,250 INFO x")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := time.Date(2017, 1, 2, 3, 4, 5, 250*int(time.Millisecond), time.UTC)
	if !got.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", got.Time, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"", ErrMalformedTimestamp},
		{"not a timestamp at all, really", ErrMalformedTimestamp},
		{"2017-13-02 03:04:05 INFO bad month", ErrMalformedTimestamp},
		{"2017-01-02T03:04:05 INFO iso separator", ErrMalformedTimestamp},
		{"2017-01-02 03:04:05INFO no space", ErrMalformedTimestamp},
		{"2017-01-02 03:04:05 ", ErrUnknownSeverity},
		{"2017-01-02 03:04:05 NOTICE what", ErrUnknownSeverity},
		{"2017-01-02 03:04:05 WARN short label", ErrUnknownSeverity},
		{"2017-01-02 03:04:05 INFOx glued", ErrUnknownSeverity},
		{"2017-01-02 03:04:05 info lower case", ErrUnknownSeverity},
	}

	for _, tt := range tests {
		_, err := Parse(tt.raw)
		if err == nil {
			t.Errorf("Parse(%q) returned nil error, want %v", tt.raw, tt.want)
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.raw, err, tt.want)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q) error is not a *ParseError", tt.raw)
		} else if pe.Raw != tt.raw {
			t.Errorf("ParseError.Raw = %q, want %q", pe.Raw, tt.raw)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"debug", Debug, false},
		{"INFO", Info, false},
		{"warn", Warning, false},
		{" Warning ", Warning, false},
		{"error", Error, false},
		{"CRITICAL", Critical, false},
		{"fatal", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownSeverity) {
				t.Errorf("ParseSeverity(%q) error = %v, want ErrUnknownSeverity", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSeverity(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSeverityJSON(t *testing.T) {
	line := Line{
		Time:     time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC),
		Severity: Critical,
		Message:  "disk full",
	}
	data, err := json.Marshal(line)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var back Line
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back.Severity != Critical {
		t.Errorf("Severity after JSON = %v, want CRITICAL", back.Severity)
	}
}
