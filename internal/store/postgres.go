package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_clip/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Postgres stores video items in a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := &Postgres{pool: pool}
	if err := db.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("postgres connected", slog.String("addr", config.ConnConfig.Host))
	return db, nil
}

func (db *Postgres) Close() {
	db.pool.Close()
}

func (db *Postgres) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := db.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Info("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// Create inserts a new pending item.
func (db *Postgres) Create(ctx context.Context, item *engine.VideoItem) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = engine.StatusPending
	}
	if item.Platform == "" {
		item.Platform = engine.PlatformNone
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO video_items (id, url, platform, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.URL, string(item.Platform), string(item.Status), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// Get returns the item with the given ID, or ErrNotFound.
func (db *Postgres) Get(ctx context.Context, id string) (*engine.VideoItem, error) {
	var row itemRow
	err := db.pool.QueryRow(ctx,
		`SELECT `+itemSelectColumns+` FROM video_items WHERE id = $1`, id,
	).Scan(scanTargets(&row)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return row.decode()
}

// Update applies a partial field set and bumps updated_at.
func (db *Postgres) Update(ctx context.Context, id string, fields engine.Fields) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	args = append(args, id)

	for _, key := range sortedFieldKeys(fields) {
		val, err := encodeField(key, fields[key])
		if err != nil {
			return err
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", key, len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	tag, err := db.pool.Exec(ctx,
		`UPDATE video_items SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the most recently updated items.
func (db *Postgres) List(ctx context.Context, limit int) ([]*engine.VideoItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+itemSelectColumns+` FROM video_items ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []*engine.VideoItem{}
	for rows.Next() {
		var row itemRow
		if err := rows.Scan(scanTargets(&row)...); err != nil {
			return nil, err
		}
		item, err := row.decode()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
