package sessionclient

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// LocalCache persists the last known identity between provider runs.
// Load returns nil, nil when nothing is cached.
type LocalCache interface {
	Load(ctx context.Context) (*User, error)
	Save(ctx context.Context, u User) error
	Clear(ctx context.Context) error
}

type MemoryCache struct {
	mu   sync.Mutex
	user *User
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (m *MemoryCache) Load(context.Context) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, nil
	}
	cp := *m.user
	return &cp, nil
}

func (m *MemoryCache) Save(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &u
	return nil
}

func (m *MemoryCache) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}

// SQLiteCache keeps the identity in a single-row SQLite table so it outlives
// the process.
type SQLiteCache struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS session_cache (
    id       INTEGER PRIMARY KEY CHECK (id = 1),
    payload  BLOB NOT NULL,
    saved_at TEXT NOT NULL
)`

// NewSQLiteCache opens dsn (a file path, or ":memory:") and ensures the table.
func NewSQLiteCache(ctx context.Context, dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: ":memory:" databases are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session_cache: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Load(ctx context.Context) (*User, error) {
	var raw []byte
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM session_cache WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session cache: %w", err)
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode session cache: %w", err)
	}
	return &u, nil
}

func (c *SQLiteCache) Save(ctx context.Context, u User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO session_cache (id, payload, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`, raw, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save session cache: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM session_cache`); err != nil {
		return fmt.Errorf("clear session cache: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Close() error { return c.db.Close() }
