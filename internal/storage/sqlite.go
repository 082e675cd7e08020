// Package storage provides SQLite-based persistence for generation-run
// history and test-matrix summaries, for use by the designer tooling.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// RunRecord is one recorded generation run.
type RunRecord struct {
	ID           int64
	LevelID      int
	Seed         int64
	Theme        string
	Mode         string
	Waypoints    int
	TotalLength  float64
	Complexity   float64
	BalanceScore float64
	IsFallback   bool
	Retries      int
	DurationMs   int64
	CreatedAt    time.Time
}

// MatrixRecord is the stored summary of one test-matrix run.
type MatrixRecord struct {
	ID        int64
	LevelID   int
	Total     int
	Passed    int
	Warned    int
	Failed    int
	PassRate  float64
	Critical  bool
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			theme TEXT NOT NULL,
			mode TEXT NOT NULL,
			waypoints INTEGER NOT NULL,
			total_length REAL NOT NULL,
			complexity REAL NOT NULL,
			balance_score REAL NOT NULL,
			is_fallback INTEGER NOT NULL DEFAULT 0,
			retries INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_level_id ON runs(level_id);
		CREATE INDEX IF NOT EXISTS idx_runs_recent ON runs(level_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS matrix_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id INTEGER NOT NULL,
			total INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			warned INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			pass_rate REAL NOT NULL,
			critical INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matrix_level_id ON matrix_runs(level_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a generation run. Returns the inserted ID.
func (s *Store) SaveRun(r RunRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs
		 (level_id, seed, theme, mode, waypoints, total_length, complexity,
		  balance_score, is_fallback, retries, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.LevelID, r.Seed, r.Theme, r.Mode, r.Waypoints, r.TotalLength,
		r.Complexity, r.BalanceScore, boolToInt(r.IsFallback), r.Retries, r.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// RecentRuns retrieves the most recent runs for a level, newest first.
// A negative levelID returns runs across every level.
func (s *Store) RecentRuns(levelID int, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, level_id, seed, theme, mode, waypoints, total_length,
	                 complexity, balance_score, is_fallback, retries, duration_ms, created_at
	          FROM runs`
	args := []any{}
	if levelID >= 0 {
		query += " WHERE level_id = ?"
		args = append(args, levelID)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var fallback int
		var createdAt any
		if err := rows.Scan(&r.ID, &r.LevelID, &r.Seed, &r.Theme, &r.Mode,
			&r.Waypoints, &r.TotalLength, &r.Complexity, &r.BalanceScore,
			&fallback, &r.Retries, &r.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.IsFallback = fallback != 0
		r.CreatedAt = parseTimestamp(createdAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

// FallbackRate returns the fraction of recorded runs for a level that
// needed the fallback ladder. Returns 0 if no runs exist.
func (s *Store) FallbackRate(levelID int) (float64, error) {
	var total, fallbacks sql.NullInt64
	err := s.db.QueryRow(
		"SELECT COUNT(*), SUM(is_fallback) FROM runs WHERE level_id = ?",
		levelID,
	).Scan(&total, &fallbacks)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query fallback rate: %w", err)
	}
	if !total.Valid || total.Int64 == 0 {
		return 0, nil
	}
	return float64(fallbacks.Int64) / float64(total.Int64), nil
}

// SaveMatrix records a test-matrix summary. Returns the inserted ID.
func (s *Store) SaveMatrix(m MatrixRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO matrix_runs
		 (level_id, total, passed, warned, failed, pass_rate, critical)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.LevelID, m.Total, m.Passed, m.Warned, m.Failed, m.PassRate, boolToInt(m.Critical),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save matrix run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// RecentMatrices retrieves the latest matrix summaries for a level.
func (s *Store) RecentMatrices(levelID int, limit int) ([]MatrixRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, level_id, total, passed, warned, failed, pass_rate, critical, created_at
		 FROM matrix_runs
		 WHERE level_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		levelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matrix runs: %w", err)
	}
	defer rows.Close()

	var records []MatrixRecord
	for rows.Next() {
		var m MatrixRecord
		var critical int
		var createdAt any
		if err := rows.Scan(&m.ID, &m.LevelID, &m.Total, &m.Passed, &m.Warned,
			&m.Failed, &m.PassRate, &critical, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.Critical = critical != 0
		m.CreatedAt = parseTimestamp(createdAt)
		records = append(records, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

// ClearRuns deletes the recorded runs for a level. A negative levelID
// clears runs across every level.
func (s *Store) ClearRuns(levelID int) error {
	var err error
	if levelID < 0 {
		_, err = s.db.Exec("DELETE FROM runs")
	} else {
		_, err = s.db.Exec("DELETE FROM runs WHERE level_id = ?", levelID)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// parseTimestamp handles both time.Time and string datetime columns.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
