package databases

// go generate: mockery --name KeyValueHelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/linesmerrill/shift-handover/config"
)

// ErrNotFound is returned by KeyValueHelper.Get when the key has no value
var ErrNotFound = errors.New("key not found")

// ErrQuotaExceeded is returned by KeyValueHelper.Set when the value is larger
// than the configured storage quota
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KeyValueHelper is the durable medium the report store writes to. One value
// per key; a Set on an existing key replaces it.
type KeyValueHelper interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// LocalStore is a KeyValueHelper backed by a single SQLite file in the user's
// profile directory
type LocalStore struct {
	db       *sql.DB
	mu       sync.RWMutex
	path     string
	maxBytes int
}

// NewLocalStore opens (creating if needed) the SQLite file described by the config
func NewLocalStore(conf config.StorageConfig) (*LocalStore, error) {
	if conf.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(conf.Path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", conf.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps ":memory:" databases alive and serialises writers
	db.SetMaxOpenConns(1)

	s := &LocalStore{db: db, path: conf.Path, maxBytes: conf.MaxValueBytes}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

// Path returns the database file location
func (s *LocalStore) Path() string {
	return s.path
}

// Close closes the underlying database
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key or ErrNotFound
func (s *LocalStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value
func (s *LocalStore) Set(ctx context.Context, key, value string) error {
	if s.maxBytes > 0 && len(key)+len(value) > s.maxBytes {
		return fmt.Errorf("%s is %d bytes, limit %d: %w", key, len(value), s.maxBytes, ErrQuotaExceeded)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Keys returns every key starting with prefix in ascending order
func (s *LocalStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Backup writes a consistent copy of the database to dst
func (s *LocalStore) Backup(ctx context.Context, dst string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dst); err != nil {
		return fmt.Errorf("failed to back up database to %s: %w", dst, err)
	}
	return nil
}
