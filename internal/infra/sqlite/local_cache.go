package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
	"logo-quiz-service/internal/domain"
)

// LocalCache is an on-disk key-value fallback cache for finished scores.
type LocalCache struct {
	conn *sql.DB
}

// Open opens (or creates) the cache database at path and ensures its table exists.
func Open(ctx context.Context, path string) (*LocalCache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &LocalCache{conn: db}, nil
}

// Close closes the database connection.
func (c *LocalCache) Close() error {
	return c.conn.Close()
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS local_scores (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating local_scores: %w", err)
	}
	return nil
}

// Put stores rec under its timestamp key. Several processes may share the file,
// so an existing key is never overwritten; the loser gets domain.ErrCacheKeyTaken.
func (c *LocalCache) Put(ctx context.Context, rec domain.ScoreRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	key := domain.LocalCacheKey(rec.Timestamp)
	_, err = c.conn.ExecContext(ctx,
		"INSERT INTO local_scores (key, value) VALUES (?, ?)",
		key, string(data),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return fmt.Errorf("%w: %s", domain.ErrCacheKeyTaken, key)
	}
	return err
}

// LoadAll returns cached records in insertion order. Rows that fail to decode are skipped.
func (c *LocalCache) LoadAll(ctx context.Context) ([]domain.ScoreRecord, error) {
	rows, err := c.conn.QueryContext(ctx,
		"SELECT key, value FROM local_scores WHERE key LIKE ? ORDER BY rowid",
		domain.LocalCacheKeyPrefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		var rec domain.ScoreRecord
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			slog.Warn("skipping unreadable cached score", "key", key, "err", err)
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
