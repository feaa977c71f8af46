package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"lapse/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users need to delete the history database afterwards.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match
// the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Status classifies how a session ended.
type Status string

const (
	// StatusCompleted means the timelapse was assembled successfully.
	StatusCompleted Status = "completed"
	// StatusFailed means assembly failed; raw frames are preserved.
	StatusFailed Status = "failed"
	// StatusNoFrames means the print ended before any frame was captured.
	StatusNoFrames Status = "no_frames"
)

// Record is one finished print session.
type Record struct {
	ID         string
	Name       string
	RawName    string
	Status     Status
	StartedAt  time.Time
	EndedAt    time.Time
	Duration   time.Duration
	FrameCount int
	VideoPath  string
	FramesPath string
	Error      string
}

// Store persists session records backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database under the log
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Add appends a finished session record.
func (s *Store) Add(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record required")
	}
	if rec.ID == "" {
		return errors.New("record ID required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, name, raw_name, status, started_at, ended_at,
			duration_seconds, frame_count, video_path, frames_path, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.RawName, string(rec.Status),
		rec.StartedAt.UTC(), rec.EndedAt.UTC(),
		int64(rec.Duration.Seconds()), rec.FrameCount,
		rec.VideoPath, rec.FramesPath, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("insert session record: %w", err)
	}
	return nil
}

// Recent returns the most recently ended sessions, newest first. A
// limit <= 0 returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, name, raw_name, status, started_at, ended_at,
			duration_seconds, frame_count, video_path, frames_path, error
		FROM sessions
		ORDER BY ended_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			status  string
			seconds int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.RawName, &status,
			&rec.StartedAt, &rec.EndedAt, &seconds,
			&rec.FrameCount, &rec.VideoPath, &rec.FramesPath, &rec.Error,
		); err != nil {
			return nil, fmt.Errorf("scan session record: %w", err)
		}
		rec.Status = Status(status)
		rec.Duration = time.Duration(seconds) * time.Second
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session records: %w", err)
	}
	return records, nil
}
