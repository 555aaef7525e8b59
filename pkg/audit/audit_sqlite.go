// Package audit persists registry load reports in SQLite so operators can
// answer "what loaded, when, and what was skipped" after the fact. The
// registry itself never depends on this package; hosts wire it optionally.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	rostererrors "github.com/rosterkit/roster/pkg/errors"
	"github.com/rosterkit/roster/pkg/registry"
)

// Store persists load reports in SQLite.
type Store struct {
	db *sql.DB
}

// ReportRow is one persisted load report.
type ReportRow struct {
	ID         string
	Dirs       []string
	Loaded     int
	Malformed  int
	Duplicates int
	Issues     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// EventRow is one per-document outcome within a report.
type EventRow struct {
	ReportID string
	Path     string
	Agent    string
	Status   string // loaded, malformed, duplicate
	Detail   string
}

// Open opens (or creates) the SQLite database at path and ensures schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, rostererrors.New(rostererrors.CodeStoreError, "open audit database", err)
	}
	return NewStore(db)
}

// NewStore wraps an existing database handle and ensures schema.
func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureAuditSchema(db); err != nil {
		return nil, rostererrors.New(rostererrors.CodeStoreError, "ensure audit schema", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordLoad stores one report plus a per-document event trail. The loaded
// events come from the registry; skips and duplicates from the report.
func (s *Store) RecordLoad(ctx context.Context, report *registry.Report, reg *registry.Registry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rostererrors.New(rostererrors.CodeStoreError, "begin audit transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO load_reports (
			id, dirs, loaded, malformed, duplicates, issues, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		strings.Join(report.Dirs, string(eventDirSep)),
		report.Loaded,
		len(report.Malformed),
		len(report.Duplicates),
		len(report.Issues),
		report.StartedAt.UTC(),
		report.FinishedAt.UTC(),
	)
	if err != nil {
		return rostererrors.New(rostererrors.CodeStoreError, "insert load report", err)
	}

	insert := func(path, agent, status, detail string) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO load_events (report_id, path, agent, status, detail)
			VALUES (?, ?, ?, ?, ?)
		`, report.ID, path, agent, status, detail)
		return err
	}

	if reg != nil {
		for _, def := range reg.All() {
			if err := insert(def.Path, def.Name, "loaded", ""); err != nil {
				return rostererrors.New(rostererrors.CodeStoreError, "insert load event", err)
			}
		}
	}
	for _, fe := range report.Malformed {
		if err := insert(fe.Path, "", "malformed", fe.Err.Error()); err != nil {
			return rostererrors.New(rostererrors.CodeStoreError, "insert malformed event", err)
		}
	}
	for _, dup := range report.Duplicates {
		if err := insert(dup.Path, dup.Name, "duplicate", "replaced "+dup.Previous); err != nil {
			return rostererrors.New(rostererrors.CodeStoreError, "insert duplicate event", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return rostererrors.New(rostererrors.CodeStoreError, "commit audit transaction", err)
	}
	return nil
}

// Reports returns the most recent reports, newest first.
func (s *Store) Reports(ctx context.Context, limit int) ([]ReportRow, error) {
	query := `
		SELECT id, dirs, loaded, malformed, duplicates, issues, started_at, finished_at
		FROM load_reports
		ORDER BY started_at DESC, rowid DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, rostererrors.New(rostererrors.CodeStoreError, "query load reports", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var (
			row      ReportRow
			dirs     string
			started  sql.NullTime
			finished sql.NullTime
		)
		if err := rows.Scan(&row.ID, &dirs, &row.Loaded, &row.Malformed,
			&row.Duplicates, &row.Issues, &started, &finished); err != nil {
			return nil, rostererrors.New(rostererrors.CodeStoreError, "scan load report", err)
		}
		if dirs != "" {
			row.Dirs = strings.Split(dirs, string(eventDirSep))
		}
		if started.Valid {
			row.StartedAt = started.Time
		}
		if finished.Valid {
			row.FinishedAt = finished.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, rostererrors.New(rostererrors.CodeStoreError, "iterate load reports", err)
	}
	return out, nil
}

// Events returns the per-document trail for one report, optionally filtered
// by status.
func (s *Store) Events(ctx context.Context, reportID, status string) ([]EventRow, error) {
	query := `
		SELECT report_id, path, agent, status, detail
		FROM load_events
		WHERE report_id = ?
	`
	args := []any{reportID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY rowid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, rostererrors.New(rostererrors.CodeStoreError, "query load events", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var row EventRow
		if err := rows.Scan(&row.ReportID, &row.Path, &row.Agent, &row.Status, &row.Detail); err != nil {
			return nil, rostererrors.New(rostererrors.CodeStoreError, "scan load event", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, rostererrors.New(rostererrors.CodeStoreError, "iterate load events", err)
	}
	return out, nil
}

// eventDirSep separates directory paths in the dirs column. NUL cannot
// appear in a file path.
const eventDirSep = '\x00'

func ensureAuditSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS load_reports (
			id TEXT PRIMARY KEY,
			dirs TEXT NOT NULL,
			loaded INTEGER NOT NULL,
			malformed INTEGER NOT NULL,
			duplicates INTEGER NOT NULL,
			issues INTEGER NOT NULL,
			started_at TIMESTAMP,
			finished_at TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS load_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id TEXT NOT NULL,
			path TEXT NOT NULL,
			agent TEXT,
			status TEXT NOT NULL,
			detail TEXT,
			FOREIGN KEY (report_id) REFERENCES load_reports(id)
		);
		CREATE INDEX IF NOT EXISTS idx_load_events_report ON load_events(report_id);
		CREATE INDEX IF NOT EXISTS idx_load_events_status ON load_events(status);
	`)
	return err
}
