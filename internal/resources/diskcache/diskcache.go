// Package diskcache is an optional second-tier persistent cache sitting
// behind the custom-entity parser's in-memory LRU (spec §4.1), keeping
// its results across process restarts. The builtin-entity parser has no
// disk tier.
// Grounded in the teacher's internal/db package: same connection-setup
// and migration style, swapped onto modernc.org/sqlite (pure Go, no
// CGO) and reduced to the one table this cache needs.
package diskcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const migrationSQL = `
CREATE TABLE IF NOT EXISTS entity_cache (
	cache_key  TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
`

// Cache wraps a single-connection sqlite database storing serialized
// entity-parser results keyed by (lowercased input, sorted kind filter)
// — the same key shape the in-memory LRU caches use.
type Cache struct {
	conn *sql.DB
}

// Open creates (or reuses) the sqlite file at path and ensures its
// schema exists.
func Open(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating disk cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening disk cache: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if _, err := conn.Exec(migrationSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating disk cache: %w", err)
	}

	return &Cache{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Cache) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Get returns the raw serialized value stored under key, if any.
func (c *Cache) Get(key string) (string, bool, error) {
	var value string
	err := c.conn.QueryRow(`SELECT value FROM entity_cache WHERE cache_key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading disk cache key %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, overwriting any previous entry.
func (c *Cache) Put(key, value string) error {
	_, err := c.conn.Exec(`
		INSERT INTO entity_cache (cache_key, value) VALUES (?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing disk cache key %q: %w", key, err)
	}
	return nil
}
