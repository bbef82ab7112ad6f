// internal/metrics/metrics_test.go
package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dorontal/scrapelog/internal/report"
)

func TestObserve(t *testing.T) {
	m := New()

	m.Observe(report.Report{
		Status:    report.StatusOK,
		CheckedAt: time.Unix(1496311200, 0),
		Duration:  90 * time.Second,
		Lines:     42,
		Warnings:  3,
		Criticals: 1,
	})

	if got := testutil.ToFloat64(m.ChecksTotal.WithLabelValues("ok", "")); got != 1 {
		t.Errorf("checks_total{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastCheck); got != 1496311200 {
		t.Errorf("last_check = %v", got)
	}
	if got := testutil.ToFloat64(m.LastOK); got != 1 {
		t.Errorf("last_check_ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SessionDuration); got != 90 {
		t.Errorf("session duration = %v, want 90", got)
	}
	if got := testutil.ToFloat64(m.SessionLines); got != 42 {
		t.Errorf("session lines = %v, want 42", got)
	}
	if got := testutil.ToFloat64(m.SessionProblems.WithLabelValues("warning")); got != 3 {
		t.Errorf("warnings = %v, want 3", got)
	}

	m.Observe(report.Report{Status: report.StatusFailed, Reason: "duplicate_end", CheckedAt: time.Unix(1496311300, 0)})

	if got := testutil.ToFloat64(m.ChecksTotal.WithLabelValues("failed", "duplicate_end")); got != 1 {
		t.Errorf("checks_total{failed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastOK); got != 0 {
		t.Errorf("last_check_ok = %v, want 0", got)
	}
	// Session gauges still describe the last good session.
	if got := testutil.ToFloat64(m.SessionLines); got != 42 {
		t.Errorf("session lines after failure = %v, want 42", got)
	}
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.Observe(report.Report{Status: report.StatusOK, CheckedAt: time.Now(), Lines: 7})

	path := filepath.Join(t.TempDir(), "textfile", "scrapelog.prom")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# TYPE scrapelog_checks_total counter",
		`scrapelog_checks_total{reason="",status="ok"} 1`,
		"scrapelog_session_lines 7",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics file missing %q:\n%s", want, data)
		}
	}
}
