// Package history records every locate run in a SQLite database so flaky
// detections can be diagnosed after the fact: what was searched for, where
// it was found, by which strategy and after how many attempts.
package history

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

	"github.com/ironsheep/icon-locator/internal/grounding"
)

// Entry is one locate run.
type Entry struct {
	ID     string `json:"id"`
	RunID  string `json:"run_id,omitempty"`
	Label  string `json:"label"`
	Source string `json:"source"`

	Found      bool    `json:"found"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Method     string  `json:"method,omitempty"`
	Confidence float64 `json:"confidence"`
	Attempts   int     `json:"attempts"`
	Error      string  `json:"error,omitempty"`

	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromResult builds an entry from the outcome of Chain.Locate.
func FromResult(label, source string, res *grounding.Result, err error, elapsed time.Duration) *Entry {
	e := &Entry{
		Label:      label,
		Source:     source,
		DurationMs: elapsed.Milliseconds(),
	}
	if res != nil {
		e.Found = true
		e.RunID = res.RunID
		e.X, e.Y = res.X, res.Y
		e.Method = res.Method
		e.Confidence = res.Confidence
		e.Attempts = res.Attempts
	}
	var nf *grounding.NotFoundError
	if errors.As(err, &nf) {
		e.RunID = nf.RunID
		e.Attempts = nf.Attempts
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Store is the SQLite-backed history.
type Store struct {
	conn *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		run_id TEXT,
		label TEXT NOT NULL,
		source TEXT NOT NULL,
		found INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		method TEXT,
		confidence REAL NOT NULL,
		attempts INTEGER NOT NULL,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	_, err := s.conn.Exec(query)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record inserts e, assigning its ID and, when unset, its timestamp.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e == nil {
		return errors.New("nil history entry")
	}
	e.ID = uuid.New().String()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	query := `
		INSERT INTO runs (
			id, run_id, label, source, found, x, y, method,
			confidence, attempts, error, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.conn.ExecContext(ctx, query,
		e.ID, e.RunID, e.Label, e.Source, e.Found, e.X, e.Y, e.Method,
		e.Confidence, e.Attempts, e.Error, e.DurationMs, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, run_id, label, source, found, x, y, method,
			   confidence, attempts, error, duration_ms, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`

	rows, err := s.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		e := &Entry{}
		var runID, method, errText sql.NullString
		if err := rows.Scan(
			&e.ID, &runID, &e.Label, &e.Source, &e.Found, &e.X, &e.Y, &method,
			&e.Confidence, &e.Attempts, &errText, &e.DurationMs, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		e.RunID = runID.String
		e.Method = method.String
		e.Error = errText.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return entries, nil
}

// MethodCounts returns how many successful runs each strategy produced.
func (s *Store) MethodCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT method, COUNT(*) FROM runs
		WHERE found = 1
		GROUP BY method`)
	if err != nil {
		return nil, fmt.Errorf("failed to count methods: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var method string
		var n int
		if err := rows.Scan(&method, &n); err != nil {
			return nil, fmt.Errorf("failed to scan method count: %w", err)
		}
		counts[method] = n
	}
	return counts, rows.Err()
}
