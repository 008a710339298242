package rescache

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a persistent response cache backed by a SQLite database.
// Entries older than the configured TTL are treated as misses and lazily
// deleted on read.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLite opens (creating if needed) a response cache at dbPath. A ttl of
// zero falls back to DefaultTTL.
func NewSQLite(dbPath string, ttl time.Duration) (*SQLite, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS responses (
			key        TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			fetched_at INTEGER NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached response body for key, if present and fresh.
func (s *SQLite) Get(key string) ([]byte, bool) {
	var body []byte
	var fetchedAt int64
	err := s.db.QueryRow(
		"SELECT body, fetched_at FROM responses WHERE key = ?", key,
	).Scan(&body, &fetchedAt)
	if err != nil {
		return nil, false
	}
	if s.now().Sub(time.Unix(fetchedAt, 0)) > s.ttl {
		_, _ = s.db.Exec("DELETE FROM responses WHERE key = ?", key)
		return nil, false
	}
	return body, true
}

// Set stores a response body under key, replacing any previous entry.
func (s *SQLite) Set(key string, body []byte) {
	_, _ = s.db.Exec(
		"INSERT INTO responses (key, body, fetched_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at",
		key, body, s.now().Unix(),
	)
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
