// Package store caches finished outlines in SQLite, keyed by the SHA-256 of
// the source document, so the same file is never outlined twice.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no outline is cached for a hash.
var ErrNotFound = errors.New("outline not cached")

// Entry is one cached outline.
type Entry struct {
	Hash      string          `json:"hash"`
	Filename  string          `json:"filename"`
	Strategy  string          `json:"strategy"`
	BodyFont  float64         `json:"body_font"`
	Accuracy  float64         `json:"accuracy"`
	Outline   json.RawMessage `json:"outline"`
	CreatedAt time.Time       `json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS outlines (
	hash       TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	strategy   TEXT NOT NULL,
	body_font  REAL NOT NULL,
	accuracy   REAL NOT NULL,
	outline    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS outlines_created_at ON outlines(created_at);
`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store is a SQLite-backed outline cache. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached outline for hash.
func (s *Store) Get(ctx context.Context, hash string) (*Entry, error) {
	var (
		e       Entry
		outline string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT hash, filename, strategy, body_font, accuracy, outline, created_at
		 FROM outlines WHERE hash = ?`, hash,
	).Scan(&e.Hash, &e.Filename, &e.Strategy, &e.BodyFont, &e.Accuracy, &outline, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get outline %s: %w", hash, err)
	}
	e.Outline = json.RawMessage(outline)
	e.CreatedAt = time.Unix(0, created).UTC()
	return &e, nil
}

// Put stores e, replacing any outline cached under the same hash.
// A zero CreatedAt is set to now.
func (s *Store) Put(ctx context.Context, e Entry) error {
	if e.Hash == "" {
		return errors.New("put outline: empty hash")
	}
	if !json.Valid(e.Outline) {
		return fmt.Errorf("put outline %s: outline is not valid JSON", e.Hash)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outlines (hash, filename, strategy, body_font, accuracy, outline, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET
			filename = excluded.filename,
			strategy = excluded.strategy,
			body_font = excluded.body_font,
			accuracy = excluded.accuracy,
			outline = excluded.outline,
			created_at = excluded.created_at`,
		e.Hash, e.Filename, e.Strategy, e.BodyFont, e.Accuracy, string(e.Outline), e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("put outline %s: %w", e.Hash, err)
	}
	return nil
}

// Count returns the number of cached outlines.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outlines`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outlines: %w", err)
	}
	return n, nil
}

// Prune deletes outlines cached before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM outlines WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune outlines: %w", err)
	}
	return res.RowsAffected()
}
