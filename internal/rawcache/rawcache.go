// Package rawcache provides a SQLite-backed read-through cache for raw file
// contents fetched from the content host.
package rawcache

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS raw_files (
	key        TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store wraps a sql.DB holding cached raw file contents, keyed
// "owner/repo#branch/path".
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the cache database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("rawcache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rawcache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rawcache: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Get returns the cached content for key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	var content string
	err := s.conn.QueryRow(`SELECT content FROM raw_files WHERE key = ?`, key).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("rawcache: get %s: %w", key, err)
	}
	return content, true, nil
}

// Put stores content under key, replacing any previous value. Values are
// idempotent across writers, so last writer wins is safe.
func (s *Store) Put(key, content string) error {
	_, err := s.conn.Exec(`
		INSERT INTO raw_files (key, content) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			content    = excluded.content,
			fetched_at = CURRENT_TIMESTAMP
	`, key, content)
	if err != nil {
		return fmt.Errorf("rawcache: put %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
