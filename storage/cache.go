package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ResponseCache is a sqlite-backed cache for analytics API responses. It
// survives restarts so the dashboard paints immediately on launch while
// fresh data loads behind it.
type ResponseCache struct {
	db  *sql.DB
	ttl time.Duration

	mu  sync.Mutex
	now func() time.Time // swapped in tests
}

// NewResponseCache opens (or creates) the cache database under dataDir
func NewResponseCache(dataDir string, ttl time.Duration) (*ResponseCache, error) {
	dbPath := filepath.Join(dataDir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	cache := &ResponseCache{db: db, ttl: ttl, now: time.Now}

	if err := cache.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}

	return cache, nil
}

func (c *ResponseCache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		fetched_at DATETIME NOT NULL
	);
	`

	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached body for key if it exists and is still fresh.
// Stale entries are deleted on read.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var body []byte
	var fetchedAt time.Time
	err := c.db.QueryRow(
		"SELECT body, fetched_at FROM responses WHERE key = ?", key,
	).Scan(&body, &fetchedAt)
	if err != nil {
		return nil, false
	}

	if c.now().Sub(fetchedAt) > c.ttl {
		_, _ = c.db.Exec("DELETE FROM responses WHERE key = ?", key)
		return nil, false
	}

	return body, true
}

// Put stores a response body under key, replacing any previous entry
func (c *ResponseCache) Put(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = c.db.Exec(
		"INSERT OR REPLACE INTO responses (key, body, fetched_at) VALUES (?, ?, ?)",
		key, body, c.now(),
	)
}

// Invalidate deletes every entry whose key starts with prefix
func (c *ResponseCache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = c.db.Exec(
		"DELETE FROM responses WHERE key LIKE ? || '%'", prefix,
	)
}

// Clear drops all cached responses
func (c *ResponseCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec("DELETE FROM responses")
	return err
}

// Close closes the underlying database
func (c *ResponseCache) Close() error {
	return c.db.Close()
}
