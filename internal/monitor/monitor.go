// internal/monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/dorontal/scrapelog/internal/config"
	"github.com/dorontal/scrapelog/internal/history"
	"github.com/dorontal/scrapelog/internal/metrics"
	"github.com/dorontal/scrapelog/internal/report"
	"github.com/dorontal/scrapelog/internal/session"
)

// settleDelay is how long the log must stay quiet after a write before it
// is verified again.
const settleDelay = 500 * time.Millisecond

// Monitor periodically verifies the latest session of a scraper log and
// records each newly finished session in the history store.
type Monitor struct {
	cfg     *config.Config
	db      *history.DB
	log     zerolog.Logger
	path    string
	metrics *metrics.CheckMetrics

	lastFailure string
}

// New creates a monitor. An empty path follows the newest dated log of
// cfg.LogName in cfg.LogDir.
func New(cfg *config.Config, db *history.DB, log zerolog.Logger, path string) *Monitor {
	return &Monitor{
		cfg:     cfg,
		db:      db,
		log:     log,
		path:    path,
		metrics: metrics.New(),
	}
}

// Run checks immediately, then on every poll interval and whenever the
// log directory sees a write, until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	dir := m.cfg.LogDir
	if m.path != "" {
		dir = filepath.Dir(m.path)
	}
	m.log.Info().
		Str("dir", dir).
		Str("name", m.cfg.LogName).
		Dur("interval", m.cfg.PollInterval).
		Msg("monitor starting")

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher, err := fsnotify.NewWatcher(); err != nil {
		m.log.Warn().Err(err).Msg("file watching unavailable, polling only")
	} else {
		defer watcher.Close()
		if err := watcher.Add(dir); err != nil {
			m.log.Warn().Err(err).Str("dir", dir).Msg("cannot watch log dir, polling only")
		} else {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
	}

	m.tick()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("monitor shutting down")
			return nil
		case <-ticker.C:
			m.tick()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				if m.watches(ev.Name) {
					settle.Reset(settleDelay)
				}
			}
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			m.log.Warn().Err(err).Msg("file watcher error")
		case <-settle.C:
			m.tick()
		}
	}
}

func (m *Monitor) tick() {
	if _, _, err := m.CheckOnce(); err != nil {
		m.log.Error().Err(err).Msg("check failed")
	}
}

// watches reports whether a changed file is one the monitor verifies.
func (m *Monitor) watches(name string) bool {
	if m.path != "" {
		return filepath.Clean(name) == filepath.Clean(m.path)
	}
	return strings.HasSuffix(filepath.Base(name), "_"+m.cfg.LogName+".log")
}

// CheckOnce verifies the current log and records the outcome if it is new.
// A session still in progress (no END yet) is not recorded.
func (m *Monitor) CheckOnce() (rep report.Report, recorded bool, err error) {
	path := m.path
	if path == "" {
		path, err = m.cfg.LatestLogPath()
		if err != nil {
			return report.Report{}, false, fmt.Errorf("find log: %w", err)
		}
	}

	opts := m.cfg.ReaderOptions()
	rec, verr := session.Verify(path, opts...)
	rep = report.New(path, rec, verr)

	if verr != nil {
		recorded, err = m.recordFailure(rep, verr)
		return rep, recorded, err
	}
	m.lastFailure = ""

	query, found, err := session.LastQuery(path, opts...)
	if err != nil {
		return rep, false, fmt.Errorf("read query: %w", err)
	}
	if found {
		rep.Query = query
	}

	state, err := ReadState(m.cfg.StateFile)
	if err != nil {
		return rep, false, fmt.Errorf("read state: %w", err)
	}
	if state.Seen(path, rep.End) {
		m.log.Debug().Str("path", path).Time("end", rep.End).Msg("session already recorded")
		return rep, false, nil
	}

	if err := m.record(&rep); err != nil {
		return rep, false, err
	}
	if err := WriteState(m.cfg.StateFile, State{Path: path, End: rep.End}); err != nil {
		return rep, true, fmt.Errorf("write state: %w", err)
	}
	return rep, true, nil
}

// recordFailure stores a failed check unless it is a session still being
// written or a repeat of the previous failure.
func (m *Monitor) recordFailure(rep report.Report, verr error) (bool, error) {
	if errors.Is(verr, session.ErrMissingEnd) {
		m.log.Debug().Str("path", rep.Path).Msg("session in progress")
		return false, nil
	}
	if rep.Error == m.lastFailure {
		return false, nil
	}
	m.lastFailure = rep.Error

	if err := m.record(&rep); err != nil {
		return false, err
	}
	return true, nil
}

// record logs, stores and exports a check.
func (m *Monitor) record(rep *report.Report) error {
	LogReport(m.log, *rep)
	if err := m.db.Insert(rep); err != nil {
		return fmt.Errorf("record check: %w", err)
	}

	m.metrics.Observe(*rep)
	if m.cfg.MetricsFile != "" {
		if err := m.metrics.WriteFile(m.cfg.MetricsFile); err != nil {
			m.log.Warn().Err(err).Msg("metrics export failed")
		}
	}
	return nil
}

// LogReport logs a check outcome, raising the level with the worst line
// severity seen in the session.
func LogReport(log zerolog.Logger, rep report.Report) {
	if !rep.OK() {
		log.Error().
			Str("path", rep.Path).
			Str("reason", rep.Reason).
			Msg(rep.Error)
		return
	}

	ev := log.Info()
	switch {
	case rep.Criticals > 0, rep.Errors > 0:
		ev = log.Error()
	case rep.Warnings > 0:
		ev = log.Warn()
	}
	ev.Str("path", rep.Path).
		Dur("duration", rep.Duration).
		Int("lines", rep.Lines).
		Int("warnings", rep.Warnings).
		Int("errors", rep.Errors).
		Int("criticals", rep.Criticals).
		Msg("session verified")
}
