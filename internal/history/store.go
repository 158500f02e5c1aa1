// Package history persists a local record of past analysis runs in a SQLite
// database under .genlens/. It backs trend reporting and the export command.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"genlens/internal/analyze"
	"genlens/internal/rules"
)

// Run is one recorded analysis.
type Run struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Language       string    `json:"language"`
	Mode           string    `json:"mode"`
	Partial        bool      `json:"partial"`
	Status         string    `json:"status"`
	Violations     int       `json:"violations"`
	DecisionPoints int       `json:"decision_points"`
	Errors         int       `json:"errors"`
	Warnings       int       `json:"warnings"`
	Infos          int       `json:"infos"`
	RuleSetVersion string    `json:"rule_set_version"`
	DurationMs     int64     `json:"duration_ms"`
}

// Store provides persistence for analysis runs in a SQLite database.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// OpenStore opens or creates the history database at <dir>/history.db.
func OpenStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "history.db")
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if !dbExists {
		logger.Info("Creating history database", "path", dbPath)
	}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return store, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			language TEXT NOT NULL,
			mode TEXT NOT NULL,
			partial INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			violations INTEGER NOT NULL DEFAULT 0,
			decision_points INTEGER NOT NULL DEFAULT 0,
			errors INTEGER NOT NULL DEFAULT 0,
			warnings INTEGER NOT NULL DEFAULT 0,
			infos INTEGER NOT NULL DEFAULT 0,
			rule_set_version TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_language ON runs(language);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Record inserts a run derived from an analysis result.
func (s *Store) Record(ctx context.Context, res *analyze.Result, language string) error {
	run := Run{
		ID:             res.ID,
		CreatedAt:      time.Now().UTC(),
		Language:       language,
		Mode:           string(res.StructuralMode),
		Partial:        res.Partial,
		Status:         res.Summary.Status,
		Violations:     len(res.Violations),
		DecisionPoints: len(res.DecisionPoints),
		Errors:         res.Summary.BySeverity[rules.SeverityError],
		Warnings:       res.Summary.BySeverity[rules.SeverityWarning],
		Infos:          res.Summary.BySeverity[rules.SeverityInfo],
		RuleSetVersion: res.RuleSetVersion,
		DurationMs:     res.DurationMs,
	}
	return s.insert(ctx, run)
}

func (s *Store) insert(ctx context.Context, run Run) error {
	query := `
		INSERT INTO runs (id, created_at, language, mode, partial, status,
			violations, decision_points, errors, warnings, infos,
			rule_set_version, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.conn.ExecContext(ctx, query,
		run.ID,
		run.CreatedAt.Format(time.RFC3339),
		run.Language,
		run.Mode,
		boolToInt(run.Partial),
		run.Status,
		run.Violations,
		run.DecisionPoints,
		run.Errors,
		run.Warnings,
		run.Infos,
		run.RuleSetVersion,
		run.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("Recorded analysis run", "runId", run.ID, "status", run.Status)
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, created_at, language, mode, partial, status,
			violations, decision_points, errors, warnings, infos,
			rule_set_version, duration_ms
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// All returns every recorded run, newest first.
func (s *Store) All(ctx context.Context) ([]Run, error) {
	query := `
		SELECT id, created_at, language, mode, partial, status,
			violations, decision_points, errors, warnings, infos,
			rule_set_version, duration_ms
		FROM runs
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Prune deletes the oldest runs beyond maxRuns. A maxRuns of 0 keeps
// everything.
func (s *Store) Prune(ctx context.Context, maxRuns int) (int64, error) {
	if maxRuns <= 0 {
		return 0, nil
	}
	query := `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT ?
		)
	`
	result, err := s.conn.ExecContext(ctx, query, maxRuns)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return result.RowsAffected()
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			run       Run
			createdAt string
			partial   int
			rsVersion sql.NullString
		)
		err := rows.Scan(&run.ID, &createdAt, &run.Language, &run.Mode,
			&partial, &run.Status, &run.Violations, &run.DecisionPoints,
			&run.Errors, &run.Warnings, &run.Infos, &rsVersion, &run.DurationMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			run.CreatedAt = t
		}
		run.Partial = partial != 0
		run.RuleSetVersion = rsVersion.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
