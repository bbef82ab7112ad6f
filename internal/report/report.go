// internal/report/report.go
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/dorontal/scrapelog/internal/session"
)

// Check outcomes
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Report is the outcome of one verification of a log file.
// It is what gets printed and what the history store persists.
type Report struct {
	ID        string        `json:"id"`
	CheckedAt time.Time     `json:"checked_at"`
	Path      string        `json:"path"`
	Status    string        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Error     string        `json:"error,omitempty"`
	Start     time.Time     `json:"start,omitzero"`
	End       time.Time     `json:"end,omitzero"`
	Duration  time.Duration `json:"duration_ns"`
	Lines     int           `json:"lines"`
	Warnings  int           `json:"warnings"`
	Errors    int           `json:"errors"`
	Criticals int           `json:"criticals"`
	Query     string        `json:"query,omitempty"`
}

// New builds a report from the result of session.Verify.
func New(path string, rec session.Record, err error) Report {
	r := Report{
		ID:        uuid.NewString(),
		CheckedAt: time.Now().UTC(),
		Path:      path,
	}
	if err != nil {
		r.Status = StatusFailed
		r.Reason = session.Reason(err)
		r.Error = err.Error()
		return r
	}

	r.Status = StatusOK
	r.Start = rec.Start
	r.End = rec.End
	r.Duration = rec.Duration
	r.Lines = rec.Lines
	r.Warnings = rec.Warnings
	r.Errors = rec.Errors
	r.Criticals = rec.Criticals
	return r
}

// OK reports whether the session verified
func (r Report) OK() bool {
	return r.Status == StatusOK
}
