package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/chris/tock/internal/db/migrations"
)

// ZDB wraps a zombiezen SQLite connection.
// A single *sqlite.Conn is not safe for concurrent use, so every call holds mu.
type ZDB struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	path string
}

// NewZ opens a database using zombiezen.com/go/sqlite and applies pending migrations
func NewZ(dbPath string) (*ZDB, error) {
	dbPath, err := ResolvePath(dbPath)
	if err != nil {
		return nil, err
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sqlite.OpenConn(dbPath, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlitex.ExecuteTransient(conn, "PRAGMA busy_timeout=5000", nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := sqlitex.ExecuteTransient(conn, "PRAGMA journal_mode=WAL", nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	zdb := &ZDB{
		conn: conn,
		path: dbPath,
	}

	if err := zdb.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return zdb, nil
}

// migrate applies the shared migration list, tracking progress in PRAGMA user_version
func (zdb *ZDB) migrate() (err error) {
	version, err := zdb.SchemaVersion()
	if err != nil {
		return err
	}
	if version > len(migrations.All) {
		return fmt.Errorf("database schema version %d is newer than this tock (%d)", version, len(migrations.All))
	}

	for i := version; i < len(migrations.All); i++ {
		release := sqlitex.Save(zdb.conn)
		if err := sqlitex.ExecuteScript(zdb.conn, migrations.All[i], nil); err != nil {
			release(&err)
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if err := sqlitex.ExecuteTransient(zdb.conn, fmt.Sprintf("PRAGMA user_version = %d", i+1), nil); err != nil {
			release(&err)
			return fmt.Errorf("failed to set schema version to %d: %w", i+1, err)
		}
		release(&err)
	}

	return nil
}

// SchemaVersion reports PRAGMA user_version
func (zdb *ZDB) SchemaVersion() (int, error) {
	var version int
	err := sqlitex.ExecuteTransient(zdb.conn, "PRAGMA user_version", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to check schema version: %w", err)
	}
	return version, nil
}

// Close closes the database connection
func (zdb *ZDB) Close() error {
	zdb.mu.Lock()
	defer zdb.mu.Unlock()
	return zdb.conn.Close()
}

// Path returns the database file path
func (zdb *ZDB) Path() string {
	return zdb.path
}

// Get returns the value stored under key. ok is false when the key is absent.
func (zdb *ZDB) Get(ctx context.Context, key string) (string, bool, error) {
	zdb.mu.Lock()
	defer zdb.mu.Unlock()
	defer zdb.conn.SetInterrupt(zdb.conn.SetInterrupt(ctx.Done()))

	var (
		value string
		found bool
	)
	err := sqlitex.Execute(zdb.conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnText(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read %q: %v", ErrUnavailable, key, err)
	}
	return value, found, nil
}

// Set stores value under key, replacing any previous value
func (zdb *ZDB) Set(ctx context.Context, key, value string) error {
	zdb.mu.Lock()
	defer zdb.mu.Unlock()
	defer zdb.conn.SetInterrupt(zdb.conn.SetInterrupt(ctx.Done()))

	err := sqlitex.Execute(zdb.conn, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{
			Args: []any{key, value, time.Now().Unix()},
		})
	if err != nil {
		return fmt.Errorf("%w: failed to write %q: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (zdb *ZDB) Remove(ctx context.Context, key string) error {
	zdb.mu.Lock()
	defer zdb.mu.Unlock()
	defer zdb.conn.SetInterrupt(zdb.conn.SetInterrupt(ctx.Done()))

	err := sqlitex.Execute(zdb.conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to remove %q: %v", ErrUnavailable, key, err)
	}
	return nil
}
