// Package store persists probe reports in a local SQLite database so
// operators can query verdict history without parsing the run log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eyad-hamdy98/CheckBeer/probe"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	ts         TEXT NOT NULL,
	snapshot   TEXT NOT NULL DEFAULT '',
	suspicious INTEGER NOT NULL,
	report     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts);
`

// Run is one persisted probe run.
type Run struct {
	ID         int64
	Timestamp  string
	Snapshot   string
	Suspicious bool
	Report     probe.AggregateReport
}

// Store is a SQLite-backed history of probe runs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// modernc sqlite is not safe for concurrent writers on one connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save records one probe run. The full report is stored as JSON alongside
// the indexed columns.
func (s *Store) Save(ctx context.Context, snapshot string, report probe.AggregateReport) (int64, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("store: marshal report: %w", err)
	}
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (ts, snapshot, suspicious, report) VALUES (?, ?, ?, ?)`,
		ts, snapshot, boolToInt(report.Suspicious), string(raw))
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	return id, nil
}

// Recent returns the latest n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, snapshot, suspicious, report FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var suspicious int
		var raw string
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Snapshot, &suspicious, &raw); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.Suspicious = suspicious != 0
		if err := json.Unmarshal([]byte(raw), &r.Report); err != nil {
			return nil, fmt.Errorf("store: unmarshal report %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate runs: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
