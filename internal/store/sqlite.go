// Package store persists generated insights so a given day, language and
// score triple costs at most one model call.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-biorhythm/internal/config"
	"github.com/tartampluch/go-biorhythm/internal/insight"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS insights (
	day          TEXT    NOT NULL,
	lang         TEXT    NOT NULL,
	physical     INTEGER NOT NULL,
	emotional    INTEGER NOT NULL,
	intellectual INTEGER NOT NULL,
	message      TEXT    NOT NULL,
	created_at   TEXT    NOT NULL,
	PRIMARY KEY (day, lang, physical, emotional, intellectual)
);`

// SQLiteCache implements insight.Cache on a local SQLite file
// (pure Go driver modernc.org/sqlite).
type SQLiteCache struct {
	db *sql.DB
}

var _ insight.Cache = (*SQLiteCache)(nil)

// Open opens (or creates) the cache database at path.
func Open(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		slog.Warn(config.ErrStoreOpen,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyFile, path,
			config.LogKeyError, err,
		)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrStoreSchema, err)
	}
	return &SQLiteCache{db: db}, nil
}

// Lookup returns the cached message for key, if any.
func (c *SQLiteCache) Lookup(ctx context.Context, key insight.Key) (string, bool, error) {
	var msg string
	err := c.db.QueryRowContext(ctx,
		`SELECT message FROM insights
		 WHERE day = ? AND lang = ? AND physical = ? AND emotional = ? AND intellectual = ?`,
		key.Day, key.Lang, key.Scores.Physical, key.Scores.Emotional, key.Scores.Intellectual,
	).Scan(&msg)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}
	return msg, true, nil
}

// Store inserts or replaces the message for key.
func (c *SQLiteCache) Store(ctx context.Context, key insight.Key, message string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO insights(day, lang, physical, emotional, intellectual, message, created_at)
		 VALUES(?,?,?,?,?,?,?)
		 ON CONFLICT(day, lang, physical, emotional, intellectual)
		 DO UPDATE SET message = excluded.message, created_at = excluded.created_at`,
		key.Day, key.Lang, key.Scores.Physical, key.Scores.Emotional, key.Scores.Intellectual,
		message, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}
	return nil
}

// Prune deletes every entry for a day before the given one and returns the
// number of removed rows.
func (c *SQLiteCache) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM insights WHERE day < ?`,
		before.Format(config.DateFormatFullDash),
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}

	slog.Debug(config.MsgCachePruned,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyRows, n,
	)
	return n, nil
}

// Close releases the database handle.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
