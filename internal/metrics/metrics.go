// internal/metrics/metrics.go
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dorontal/scrapelog/internal/report"
)

// CheckMetrics tracks session checks for the node_exporter textfile
// collector. Each instance owns its registry.
type CheckMetrics struct {
	reg *prometheus.Registry

	ChecksTotal     *prometheus.CounterVec
	LastCheck       prometheus.Gauge
	LastOK          prometheus.Gauge
	SessionDuration prometheus.Gauge
	SessionLines    prometheus.Gauge
	SessionProblems *prometheus.GaugeVec
}

// New registers the check metrics on a fresh registry.
func New() *CheckMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &CheckMetrics{
		reg: reg,
		ChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scrapelog",
			Name:      "checks_total",
			Help:      "Recorded session checks by status and failure reason.",
		}, []string{"status", "reason"}),
		LastCheck: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "scrapelog",
			Name:      "last_check_timestamp_seconds",
			Help:      "Unix time of the most recent recorded check.",
		}),
		LastOK: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "scrapelog",
			Name:      "last_check_ok",
			Help:      "1 if the most recent recorded check verified, else 0.",
		}),
		SessionDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "scrapelog",
			Subsystem: "session",
			Name:      "duration_seconds",
			Help:      "Duration of the last verified session.",
		}),
		SessionLines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "scrapelog",
			Subsystem: "session",
			Name:      "lines",
			Help:      "Number of lines in the last verified session.",
		}),
		SessionProblems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scrapelog",
			Subsystem: "session",
			Name:      "problems",
			Help:      "Warning, error and critical lines in the last verified session.",
		}, []string{"severity"}),
	}
}

// Observe updates the metrics from a recorded check. Session gauges keep
// their previous values when the check failed.
func (m *CheckMetrics) Observe(rep report.Report) {
	m.ChecksTotal.WithLabelValues(rep.Status, rep.Reason).Inc()
	m.LastCheck.Set(float64(rep.CheckedAt.Unix()))
	if !rep.OK() {
		m.LastOK.Set(0)
		return
	}

	m.LastOK.Set(1)
	m.SessionDuration.Set(rep.Duration.Seconds())
	m.SessionLines.Set(float64(rep.Lines))
	m.SessionProblems.WithLabelValues("warning").Set(float64(rep.Warnings))
	m.SessionProblems.WithLabelValues("error").Set(float64(rep.Errors))
	m.SessionProblems.WithLabelValues("critical").Set(float64(rep.Criticals))
}

// WriteFile dumps the metrics in text exposition format. The file is
// replaced atomically so a scraping collector never sees half of it.
func (m *CheckMetrics) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

// Registry exposes the underlying registry for gathering.
func (m *CheckMetrics) Registry() *prometheus.Registry {
	return m.reg
}
