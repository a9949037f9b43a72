// Package db opens the SQLite database that backs persistent settings.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	maxRetries  = 5
	initialWait = 100 * time.Millisecond
)

// OpenOptions configures Open.
type OpenOptions struct {
	FileName     string        // database file inside the data directory
	MaxOpenConns int           // connection pool size
	BusyTimeout  time.Duration // how long a writer waits on a locked database
}

// DefaultOpenOptions returns the options used by the CLI.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		FileName:     "tinydiff.db",
		MaxOpenConns: 4,
		BusyTimeout:  5 * time.Second,
	}
}

// DB wraps a SQL database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the database in dataDir, applies pending migrations,
// and returns the handle. A database that fails to open because it is corrupt
// is moved aside and recreated once.
func Open(dataDir string, opts OpenOptions) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := open(dataDir, opts)
	if err != nil && IsCorruptionError(err) {
		if rerr := RecoverFromCorruption(dataDir, opts.FileName); rerr != nil {
			return nil, fmt.Errorf("%w (recovery failed: %v)", err, rerr)
		}
		db, err = open(dataDir, opts)
	}
	return db, err
}

func open(dataDir string, opts OpenOptions) (*DB, error) {
	path := filepath.Join(dataDir, opts.FileName)
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on",
		path, opts.BusyTimeout.Milliseconds())

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
		conn.SetMaxIdleConns(opts.MaxOpenConns)
	}
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn, path: path}

	ctx := context.Background()
	if err := db.pingWithRetry(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := migrateUp(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

// Conn returns the underlying connection pool.
func (db *DB) Conn() *sql.DB { return db.conn }

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// WithTx executes fn within a transaction, rolling back if fn fails.
func (db *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// pingWithRetry pings the database with exponential backoff.
func (db *DB) pingWithRetry(ctx context.Context) error {
	var err error
	wait := initialWait
	for i := 0; i < maxRetries; i++ {
		if err = db.conn.PingContext(ctx); err == nil {
			return nil
		}
		if IsCorruptionError(err) {
			return err
		}
		if i < maxRetries-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}
	return fmt.Errorf("ping failed after %d retries: %w", maxRetries, err)
}
