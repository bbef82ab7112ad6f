// cmd/scrapelog/commands.go
package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dorontal/scrapelog/internal/history"
	"github.com/dorontal/scrapelog/internal/logline"
	"github.com/dorontal/scrapelog/internal/monitor"
	"github.com/dorontal/scrapelog/internal/report"
	"github.com/dorontal/scrapelog/internal/revreader"
	"github.com/dorontal/scrapelog/internal/session"
)

func (a *app) verifyCmd() *cobra.Command {
	var noRecord bool

	cmd := &cobra.Command{
		Use:   "verify [path]",
		Short: "Verify and summarise the last session of a log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.logPath(args)
			if err != nil {
				return err
			}

			opts := a.cfg.ReaderOptions()
			rec, verr := session.Verify(path, opts...)
			rep := report.New(path, rec, verr)
			if verr == nil {
				a.attachQuery(&rep, opts...)
			}
			monitor.LogReport(a.log, rep)

			if !noRecord {
				if err := a.record(&rep); err != nil {
					return err
				}
			}

			if err := a.out.Report(rep); err != nil {
				return err
			}
			if verr != nil {
				return fmt.Errorf("last session of %s failed verification (%s)", path, rep.Reason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not store the result in the history database")
	return cmd
}

// attachQuery fills in the last query of a verified session. A failed
// lookup is logged and leaves the report as it is.
func (a *app) attachQuery(rep *report.Report, opts ...revreader.Option) {
	q, found, err := session.LastQuery(rep.Path, opts...)
	switch {
	case err != nil:
		a.log.Warn().Err(err).Str("path", rep.Path).Msg("query lookup failed")
	case found:
		rep.Query = q
	}
}

func (a *app) record(rep *report.Report) error {
	db, err := history.NewDB(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer db.Close()

	if err := db.Insert(rep); err != nil {
		return fmt.Errorf("record check: %w", err)
	}
	if rep.OK() {
		return nil
	}

	last, ok, err := db.LatestOK(rep.Path)
	if err != nil {
		return fmt.Errorf("look up last good check: %w", err)
	}
	if ok {
		a.log.Info().
			Str("path", last.Path).
			Time("end", last.End).
			Time("checked_at", last.CheckedAt).
			Msg("last verified session")
	} else {
		a.log.Info().Str("path", rep.Path).Msg("log has never verified")
	}
	return nil
}

func (a *app) queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [path]",
		Short: "Print the most recent query of the last session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.logPath(args)
			if err != nil {
				return err
			}
			q, found, err := session.LastQuery(path, a.cfg.ReaderOptions()...)
			if err != nil {
				return err
			}
			return a.out.Query(path, q, found)
		},
	}
}

func (a *app) sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session [path]",
		Short: "Print every line of the last session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.logPath(args)
			if err != nil {
				return err
			}
			lines, err := session.Collect(path, a.cfg.ReaderOptions()...)
			if err != nil {
				return err
			}
			return a.out.Lines(lines)
		},
	}
}

func (a *app) tailCmd() *cobra.Command {
	var n int
	var minLevel string

	cmd := &cobra.Command{
		Use:   "tail [path]",
		Short: "Print the last lines of a log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.logPath(args)
			if err != nil {
				return err
			}

			var threshold logline.Severity
			if minLevel != "" {
				threshold, err = logline.ParseSeverity(minLevel)
				if err != nil {
					return err
				}
			}

			raw, err := revreader.Tail(path, n, a.cfg.ReaderOptions()...)
			if err != nil {
				return err
			}

			for _, text := range raw {
				line, err := logline.Parse(text)
				if err != nil {
					// continuation lines such as tracebacks
					if minLevel == "" {
						if err := a.out.Raw(text); err != nil {
							return err
						}
					}
					continue
				}
				if line.Severity < threshold {
					continue
				}
				if err := a.out.Lines([]logline.Line{line}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of lines")
	cmd.Flags().StringVarP(&minLevel, "level", "l", "", "minimum severity to show (debug, info, warning, error, critical)")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	var failures bool

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "List recorded checks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := history.NewDB(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer db.Close()

			var results []report.Report
			switch {
			case failures:
				results, err = db.QueryFailures(limit)
			case len(args) > 0:
				results, err = db.QueryByPath(args[0], limit)
			default:
				results, err = db.QueryRecent(limit)
			}
			if err != nil {
				return err
			}

			counts, err := db.StatusCounts()
			if err != nil {
				return err
			}
			return a.out.Reports(results, counts)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of checks to list")
	cmd.Flags().BoolVar(&failures, "failures", false, "only list failed checks")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Keep verifying the log and record each finished session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}

			db, err := history.NewDB(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer db.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return monitor.New(a.cfg, db, a.log, path).Run(ctx)
		},
	}
}
