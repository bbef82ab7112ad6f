// internal/session/verify.go
package session

import (
	"strings"
	"time"

	"github.com/dorontal/scrapelog/internal/logline"
	"github.com/dorontal/scrapelog/internal/revreader"
)

// QueryPrefix marks lines that record the query a session ran
const QueryPrefix = "query:"

// Record summarises a verified session
type Record struct {
	Path      string        `json:"path"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Duration  time.Duration `json:"duration"`
	Lines     int           `json:"lines"`
	Warnings  int           `json:"warnings"`
	Errors    int           `json:"errors"`
	Criticals int           `json:"criticals"`
}

// Verify walks the last session of the log at path and summarises it.
// Nothing is returned on failure except the error.
func Verify(path string, opts ...revreader.Option) (Record, error) {
	w, err := Open(path, opts...)
	if err != nil {
		return Record{}, err
	}
	defer w.Close()

	rec := Record{Path: path}
	for {
		line, ok, err := w.Next()
		if err != nil {
			return Record{}, err
		}
		if !ok {
			break
		}

		if rec.Lines == 0 {
			rec.End = line.Time
		}
		rec.Start = line.Time
		rec.Lines++

		switch line.Severity {
		case logline.Warning:
			rec.Warnings++
		case logline.Error:
			rec.Errors++
		case logline.Critical:
			rec.Criticals++
		}
	}

	if rec.Lines == 0 {
		return Record{}, &Error{Path: path, Err: ErrEmptySession}
	}
	rec.Duration = rec.End.Sub(rec.Start)
	return rec, nil
}

// LastQuery returns the most recent query recorded in the last session,
// with the prefix removed and surrounding whitespace trimmed. The walk
// stops at the first match; ok is false if the session has none.
func LastQuery(path string, opts ...revreader.Option) (query string, ok bool, err error) {
	w, err := Open(path, opts...)
	if err != nil {
		return "", false, err
	}
	defer w.Close()

	for {
		line, more, err := w.Next()
		if err != nil {
			return "", false, err
		}
		if !more {
			return "", false, nil
		}
		if rest, found := strings.CutPrefix(line.Message, QueryPrefix); found {
			return strings.TrimSpace(rest), true, nil
		}
	}
}

// Collect returns every line of the last session in file order.
func Collect(path string, opts ...revreader.Option) ([]logline.Line, error) {
	w, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	var lines []logline.Line
	for {
		line, ok, err := w.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		lines = append(lines, line)
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
