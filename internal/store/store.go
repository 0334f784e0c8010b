// Package store provides SQLite persistence for runs, outlines, and the ranked section index.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run kinds
const (
	KindOutline = "outline"
	KindAnalyze = "analyze"
)

// Run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DB wraps a SQLite connection
type DB struct {
	db *sql.DB
}

// Run represents a pipeline run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	Persona     string     `json:"persona,omitempty"`
	Task        string     `json:"task,omitempty"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunFilters narrows ListRunsFiltered
type RunFilters struct {
	Kind   string
	Status string
	Limit  int
}

// Open opens or creates the database at path and ensures the schema exists
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{db: conn}
	if err := db.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// Close closes the database
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

func (db *DB) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			persona TEXT NOT NULL DEFAULT '',
			task TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			completed_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS outlines (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			document TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (run_id, document)
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			document TEXT NOT NULL,
			title TEXT NOT NULL,
			level TEXT NOT NULL,
			page INTEGER NOT NULL,
			score REAL NOT NULL,
			rank INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_run_id ON sections(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// CreateRun creates a new run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, kind, persona, task string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, persona, task, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), kind, persona, task, StatusRunning, formatTime(time.Now()),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as finished with the given status
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ? WHERE id = ?`,
		status, formatTime(time.Now()), runID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to complete run: run %s not found", runID)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil when it does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	row := db.db.QueryRowContext(ctx,
		`SELECT id, kind, persona, task, status, started_at, completed_at
		 FROM runs WHERE id = ?`,
		runID.String(),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	return db.ListRunsFiltered(ctx, RunFilters{Limit: limit})
}

// ListRunsFiltered retrieves recent runs matching the filters
func (db *DB) ListRunsFiltered(ctx context.Context, filters RunFilters) ([]Run, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	query := `SELECT id, kind, persona, task, status, started_at, completed_at
		FROM runs WHERE 1=1`
	var args []any
	if filters.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filters.Kind)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	query += " ORDER BY started_at DESC, rowid DESC LIMIT ?"
	args = append(args, filters.Limit)

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run       Run
		id        string
		started   string
		completed sql.NullString
	)
	if err := s.Scan(&id, &run.Kind, &run.Persona, &run.Task, &run.Status, &started, &completed); err != nil {
		return nil, err
	}

	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	if run.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return nil, err
		}
		run.CompletedAt = &t
	}
	return &run, nil
}

// timeLayout has a fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
