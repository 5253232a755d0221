// Package store provides SQLite-backed run history: each command run, the
// links committed during it and the external link checks it made.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusQuit    = "quit"
	StatusFailed  = "failed"
)

// Run is one invocation of a command.
type Run struct {
	ID         string
	Command    string
	Status     string
	Pages      int
	Items      int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Commit is a link written into a page.
type Commit struct {
	RunID       string
	Page        string
	Target      string
	Label       string
	CommittedAt time.Time
}

// LinkResult is the outcome of checking one external link.
type LinkResult struct {
	RunID     string
	Page      string
	URL       string
	Code      string
	Excepted  bool
	CheckedAt time.Time
}

// Store wraps a SQLite database for run history.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures
// all required tables exist. Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// An in-memory database lives only as long as its one connection.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			command     TEXT NOT NULL,
			status      TEXT NOT NULL,
			pages       INTEGER NOT NULL DEFAULT 0,
			items       INTEGER NOT NULL DEFAULT 0,
			started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
			finished_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS commits (
			run_id       TEXT NOT NULL REFERENCES runs(id),
			page         TEXT NOT NULL,
			target       TEXT NOT NULL,
			label        TEXT NOT NULL,
			committed_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS link_results (
			run_id     TEXT NOT NULL REFERENCES runs(id),
			page       TEXT NOT NULL,
			url        TEXT NOT NULL,
			code       TEXT NOT NULL,
			excepted   INTEGER NOT NULL DEFAULT 0,
			checked_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS commits_run ON commits(run_id)`,
		`CREATE INDEX IF NOT EXISTS link_results_run ON link_results(run_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

// StartRun records the start of a command run and returns its id.
func (s *Store) StartRun(command string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, command, status, started_at) VALUES (?, ?, ?, datetime('now'))`,
		id, command, StatusRunning,
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(id, status string, pages, items int) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, pages = ?, items = ?, finished_at = datetime('now') WHERE id = ?`,
		status, pages, items, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: unknown run %q", id)
	}
	return nil
}

// RecordCommit records a link written into page during run runID.
func (s *Store) RecordCommit(runID, page, target, label string) error {
	_, err := s.db.Exec(
		`INSERT INTO commits (run_id, page, target, label, committed_at) VALUES (?, ?, ?, ?, datetime('now'))`,
		runID, page, target, label,
	)
	if err != nil {
		return fmt.Errorf("record commit: %w", err)
	}
	return nil
}

// RecordLinkResult records the check of one external link. An empty code
// means the link loaded.
func (s *Store) RecordLinkResult(runID, page, url, code string, excepted bool) error {
	_, err := s.db.Exec(
		`INSERT INTO link_results (run_id, page, url, code, excepted, checked_at) VALUES (?, ?, ?, ?, ?, datetime('now'))`,
		runID, page, url, code, excepted,
	)
	if err != nil {
		return fmt.Errorf("record link result: %w", err)
	}
	return nil
}

// GetRun returns the run with id, or nil if there is none.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, command, status, pages, items, started_at, finished_at FROM runs WHERE id = ?`, id,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r        Run
		finished sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.Command, &r.Status, &r.Pages, &r.Items, &r.StartedAt, &finished); err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, command, status, pages, items, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// CommitsForRun returns the links committed during a run in commit order.
func (s *Store) CommitsForRun(runID string) ([]Commit, error) {
	rows, err := s.db.Query(
		`SELECT run_id, page, target, label, committed_at
		 FROM commits WHERE run_id = ? ORDER BY rowid`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	defer rows.Close()

	var commits []Commit
	for rows.Next() {
		var c Commit
		if err := rows.Scan(&c.RunID, &c.Page, &c.Target, &c.Label, &c.CommittedAt); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

// LinkResultsForRun returns the link checks made during a run. With
// failedOnly set, links that loaded are left out.
func (s *Store) LinkResultsForRun(runID string, failedOnly bool) ([]LinkResult, error) {
	query := `SELECT run_id, page, url, code, excepted, checked_at FROM link_results WHERE run_id = ?`
	if failedOnly {
		query += ` AND code != ''`
	}
	rows, err := s.db.Query(query+` ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("list link results: %w", err)
	}
	defer rows.Close()

	var results []LinkResult
	for rows.Next() {
		var r LinkResult
		if err := rows.Scan(&r.RunID, &r.Page, &r.URL, &r.Code, &r.Excepted, &r.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan link result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
