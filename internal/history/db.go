// internal/history/db.go
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dorontal/scrapelog/internal/report"
	_ "modernc.org/sqlite"
)

// timeFormat is fixed-width so that text ordering matches time ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps the SQLite store of verification reports
type DB struct {
	db *sql.DB
}

// NewDB opens or creates the SQLite database
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL lets `history` read while `watch` writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS checks (
		id TEXT PRIMARY KEY,
		checked_at TEXT NOT NULL,
		path TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		error TEXT,
		start_ts TEXT,
		end_ts TEXT,
		duration_ms INTEGER,
		lines INTEGER,
		warnings INTEGER,
		errors INTEGER,
		criticals INTEGER,
		query TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_checks_path ON checks(path);
	CREATE INDEX IF NOT EXISTS idx_checks_status ON checks(status);
	CREATE INDEX IF NOT EXISTS idx_checks_checked_at ON checks(checked_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// Insert stores a report
func (d *DB) Insert(r *report.Report) error {
	_, err := d.db.Exec(`
		INSERT INTO checks (id, checked_at, path, status, reason, error, start_ts, end_ts,
			duration_ms, lines, warnings, errors, criticals, query)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.CheckedAt.UTC().Format(timeFormat), r.Path, r.Status,
		nullString(r.Reason), nullString(r.Error),
		nullTime(r.Start), nullTime(r.End),
		r.Duration.Milliseconds(), r.Lines, r.Warnings, r.Errors, r.Criticals,
		nullString(r.Query))

	return err
}

const selectColumns = `
	SELECT id, checked_at, path, status, reason, error, start_ts, end_ts,
		duration_ms, lines, warnings, errors, criticals, query
	FROM checks`

// QueryByPath returns the most recent reports for a log file
func (d *DB) QueryByPath(path string, limit int) ([]report.Report, error) {
	rows, err := d.db.Query(selectColumns+`
		WHERE path = ?
		ORDER BY checked_at DESC
		LIMIT ?
	`, path, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

// QueryRecent returns the most recent reports across all files
func (d *DB) QueryRecent(limit int) ([]report.Report, error) {
	rows, err := d.db.Query(selectColumns+`
		ORDER BY checked_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

// QueryFailures returns recent failed reports
func (d *DB) QueryFailures(limit int) ([]report.Report, error) {
	rows, err := d.db.Query(selectColumns+`
		WHERE status != 'ok'
		ORDER BY checked_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

// LatestOK returns the most recent successful report for path.
// ok is false when the file has never verified.
func (d *DB) LatestOK(path string) (r report.Report, ok bool, err error) {
	rows, err := d.db.Query(selectColumns+`
		WHERE path = ? AND status = 'ok'
		ORDER BY checked_at DESC
		LIMIT 1
	`, path)
	if err != nil {
		return report.Report{}, false, err
	}
	defer rows.Close()

	results, err := scanReports(rows)
	if err != nil {
		return report.Report{}, false, err
	}
	if len(results) == 0 {
		return report.Report{}, false, nil
	}
	return results[0], true, nil
}

// StatusCounts returns count of reports by status
func (d *DB) StatusCounts() (map[string]int, error) {
	rows, err := d.db.Query(`
		SELECT status, COUNT(*) FROM checks GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanReports(rows *sql.Rows) ([]report.Report, error) {
	var results []report.Report
	for rows.Next() {
		var r report.Report
		var checkedStr string
		var reason, errText, startStr, endStr, query sql.NullString
		var durationMs, lines, warnings, errs, criticals sql.NullInt64

		err := rows.Scan(&r.ID, &checkedStr, &r.Path, &r.Status, &reason, &errText,
			&startStr, &endStr, &durationMs, &lines, &warnings, &errs, &criticals, &query)
		if err != nil {
			return nil, err
		}

		r.CheckedAt, err = time.Parse(time.RFC3339Nano, checkedStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt checked_at %q: %w", checkedStr, err)
		}
		r.Reason = reason.String
		r.Error = errText.String
		r.Query = query.String
		if startStr.Valid {
			r.Start, _ = time.Parse(time.RFC3339Nano, startStr.String)
		}
		if endStr.Valid {
			r.End, _ = time.Parse(time.RFC3339Nano, endStr.String)
		}
		r.Duration = time.Duration(durationMs.Int64) * time.Millisecond
		r.Lines = int(lines.Int64)
		r.Warnings = int(warnings.Int64)
		r.Errors = int(errs.Int64)
		r.Criticals = int(criticals.Int64)

		results = append(results, r)
	}
	return results, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeFormat), Valid: true}
}
