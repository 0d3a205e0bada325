package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_clip/internal/engine"
)

// SQLite stores video items in a local file. Used when no DATABASE_URL is
// configured, and by tests via an in-memory path.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the items database at path. An empty path
// defaults to ~/.go_clip/items.db.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		dir := filepath.Join(os.Getenv("HOME"), ".go_clip")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
		path = filepath.Join(dir, "items.db")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	slog.Info("sqlite opened", slog.String("path", path))
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS video_items (
	id                  TEXT PRIMARY KEY,
	url                 TEXT NOT NULL,
	platform            TEXT NOT NULL DEFAULT 'none',
	status              TEXT NOT NULL DEFAULT 'pending',
	title               TEXT,
	thumbnail_url       TEXT,
	author_name         TEXT,
	author_handle       TEXT,
	duration            INTEGER,
	music               TEXT,
	transcript          TEXT,
	stats               TEXT,
	hashtags            TEXT,
	transcript_segments TEXT,
	frames              TEXT,
	analysis            TEXT,
	error_message       TEXT,
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
)`

// Create inserts a new pending item.
func (s *SQLite) Create(ctx context.Context, item *engine.VideoItem) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = engine.StatusPending
	}
	if item.Platform == "" {
		item.Platform = engine.PlatformNone
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO video_items (id, url, platform, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.URL, string(item.Platform), string(item.Status),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// Get returns the item with the given ID, or ErrNotFound.
func (s *SQLite) Get(ctx context.Context, id string) (*engine.VideoItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemSelectColumns+` FROM video_items WHERE id = ?`, id)
	item, err := scanSQLiteItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update applies a partial field set and bumps updated_at.
func (s *SQLite) Update(ctx context.Context, id string, fields engine.Fields) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)

	for _, key := range sortedFieldKeys(fields) {
		val, err := encodeField(key, fields[key])
		if err != nil {
			return err
		}
		sets = append(sets, key+" = ?")
		args = append(args, val)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano), id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE video_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the most recently updated items.
func (s *SQLite) List(ctx context.Context, limit int) ([]*engine.VideoItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemSelectColumns+` FROM video_items ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []*engine.VideoItem{}
	for rows.Next() {
		item, err := scanSQLiteItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// scanSQLiteItem scans one row. SQLite stores timestamps as RFC 3339 text, so
// they are parsed after the scan instead of going straight into time.Time.
func scanSQLiteItem(scan func(...any) error) (*engine.VideoItem, error) {
	var row itemRow
	var createdAt, updatedAt string

	targets := scanTargets(&row)
	targets[len(targets)-2] = &createdAt
	targets[len(targets)-1] = &updatedAt
	if err := scan(targets...); err != nil {
		return nil, err
	}

	item, err := row.decode()
	if err != nil {
		return nil, err
	}
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	item.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return item, nil
}
