// Package history persists per-run summaries to a local sqlite database.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded pipeline run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	Playlist   string
	MediaRoot  string
	OutputDir  string
	DryRun     bool
	Targets    int
	Matched    int
	Copied     int
	Skipped    int
	Errors     int
	Bytes      int64
	DurationMS int64
}

// Filter specifies criteria for listing runs.
type Filter struct {
	Limit int
}

// Store persists run records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run record and fills in its ID.
func (s *Store) Record(r *Run) error {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}

	result, err := s.db.Exec(`
		INSERT INTO runs (started_at, playlist, media_root, output_dir, dry_run,
			targets, matched, copied, skipped, errors, bytes, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.StartedAt, r.Playlist, r.MediaRoot, r.OutputDir, r.DryRun,
		r.Targets, r.Matched, r.Copied, r.Skipped, r.Errors, r.Bytes, r.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// List returns runs matching the filter, most recent first.
func (s *Store) List(f Filter) ([]*Run, error) {
	query := `SELECT id, started_at, playlist, media_root, output_dir, dry_run,
		targets, matched, copied, skipped, errors, bytes, duration_ms
		FROM runs ORDER BY started_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Playlist, &r.MediaRoot, &r.OutputDir,
			&r.DryRun, &r.Targets, &r.Matched, &r.Copied, &r.Skipped, &r.Errors,
			&r.Bytes, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
