// Package artifact persists one run's outputs: a SQLite database for
// structured queries over results plus plain JSON files for CI
// consumption. Artifacts are per-run by design; nothing here implements
// retention.
package artifact

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wireparity/wireparity/internal/diff"
	"github.com/wireparity/wireparity/internal/gate"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the per-run SQLite database.
// Uses WAL mode with a single writer, same discipline as any SQLite
// store that must never see SQLITE_BUSY in normal operation.
type Store struct {
	db *sql.DB
}

// Open creates or opens the artifact database at path (":memory:" for
// tests). Idempotent: pragmas and schema are applied on every open.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a second connection would
	// only produce SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// RunMeta records the provenance of one run.
type RunMeta struct {
	RunID      string
	SeedText   string
	CorpusSize int
}

// NewRunID mints a run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// SaveReport writes the run row and every result inside one
// transaction. Partial writes are impossible: either the whole report
// lands or none of it does.
func (s *Store) SaveReport(ctx context.Context, meta RunMeta, report *diff.Report) error {
	if meta.RunID == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, generated_at, left_backend, right_backend, seed_text, corpus_size)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		meta.RunID,
		report.GeneratedAt.UTC().Format(time.RFC3339Nano),
		report.LeftBackend,
		report.RightBackend,
		meta.SeedText,
		meta.CorpusSize,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, position, scenario_id, status, entries_json, error_message)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i, result := range report.Results {
		entries, err := json.Marshal(result.Entries)
		if err != nil {
			return fmt.Errorf("failed to marshal entries for %s: %w", result.ScenarioID, err)
		}
		if result.Entries == nil {
			entries = []byte("[]")
		}
		if _, err := stmt.ExecContext(ctx, meta.RunID, i, result.ScenarioID,
			string(result.Status), string(entries), result.ErrorMessage); err != nil {
			return fmt.Errorf("failed to insert result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// SaveGateResult records one gate verdict for the run.
func (s *Store) SaveGateResult(ctx context.Context, runID string, result gate.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal gate result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO gate_evidence (run_id, gate_id, status, result_json) VALUES (?, ?, ?, ?)`,
		runID, result.GateID, string(result.Status), string(data))
	if err != nil {
		return fmt.Errorf("failed to insert gate evidence: %w", err)
	}
	return nil
}

// LatestRunID returns the run id with the newest generated_at
// timestamp, for CLI commands that omit an explicit run.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM runs ORDER BY generated_at DESC, run_id DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no runs recorded")
	}
	if err != nil {
		return "", fmt.Errorf("failed to read latest run: %w", err)
	}
	return runID, nil
}

// LoadReport reconstructs a run's report in original input order.
func (s *Store) LoadReport(ctx context.Context, runID string) (*diff.Report, error) {
	report := &diff.Report{}
	var generatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT generated_at, left_backend, right_backend FROM runs WHERE run_id = ?`, runID).
		Scan(&generatedAt, &report.LeftBackend, &report.RightBackend)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}
	report.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT scenario_id, status, entries_json, error_message
		 FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result diff.Result
		var status, entriesJSON string
		if err := rows.Scan(&result.ScenarioID, &status, &entriesJSON, &result.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		result.Status = diff.Status(status)
		result.LeftBackend = report.LeftBackend
		result.RightBackend = report.RightBackend
		if err := json.Unmarshal([]byte(entriesJSON), &result.Entries); err != nil {
			return nil, fmt.Errorf("failed to parse entries for %s: %w", result.ScenarioID, err)
		}
		report.Results = append(report.Results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}
	return report, nil
}
