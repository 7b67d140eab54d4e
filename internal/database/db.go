// Package database provides database connection and initialization functionality.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver ("sqlite3")
	_ "modernc.org/sqlite"          // Pure Go SQLite driver ("sqlite")

	"github.com/sellscalehood/backend/internal/domain"
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// Driver names registered by the imported SQLite drivers
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// DB wraps the database connection with production-grade configuration
type DB struct {
	conn   *sql.DB
	path   string
	driver string
	name   string // Database name for logging
}

// Config holds database configuration
type Config struct {
	Path        string
	Driver      string        // DriverModernc (default) or DriverMattn
	Name        string        // Friendly name for logging, also selects the schema file
	BusyTimeout time.Duration // How long a writer waits for the lock before failing
}

// New creates a new database connection.
//
// Every transaction opened on the returned DB is a BEGIN IMMEDIATE transaction:
// the write lock is taken before the first read, so read-modify-write sequences
// on the same rows never interleave.
func New(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	cfg.Path = absPath

	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(cfg.Driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configureConnectionPool(conn)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{
		conn:   conn,
		path:   cfg.Path,
		driver: cfg.Driver,
		name:   cfg.Name,
	}, nil
}

// buildConnectionString creates the driver-specific DSN.
// Both drivers get the same settings: busy timeout first (so the WAL switch
// itself can wait), WAL journal, full fsync, foreign keys and immediate
// transaction locking.
func buildConnectionString(cfg Config) (string, error) {
	busyMs := cfg.BusyTimeout.Milliseconds()

	switch cfg.Driver {
	case DriverModernc:
		var b strings.Builder
		b.WriteString(cfg.Path)
		fmt.Fprintf(&b, "?_pragma=busy_timeout(%d)", busyMs)
		b.WriteString("&_pragma=journal_mode(WAL)")
		b.WriteString("&_pragma=synchronous(FULL)") // Ledger holds real balances
		b.WriteString("&_pragma=foreign_keys(1)")
		b.WriteString("&_txlock=immediate")
		return b.String(), nil

	case DriverMattn:
		var b strings.Builder
		b.WriteString("file:")
		b.WriteString(cfg.Path)
		fmt.Fprintf(&b, "?_busy_timeout=%d", busyMs)
		b.WriteString("&_journal_mode=WAL")
		b.WriteString("&_synchronous=FULL")
		b.WriteString("&_foreign_keys=1")
		b.WriteString("&_txlock=immediate")
		return b.String(), nil

	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// configureConnectionPool sets up connection pool for long-term operation
func configureConnectionPool(conn *sql.DB) {
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
// Used by repositories to execute queries
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the database name for logging
func (db *DB) Name() string {
	return db.name
}

// Driver returns the SQL driver name
func (db *DB) Driver() string {
	return db.driver
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Migrate applies the embedded schema for this database.
// Schemas only use CREATE ... IF NOT EXISTS, so Migrate is idempotent.
func (db *DB) Migrate() error {
	schemaFile := "schemas/" + db.name + "_schema.sql"

	content, err := schemaFS.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("no schema for database %s: %w", db.name, err)
	}

	return WithTransaction(context.Background(), db.conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute schema %s for %s: %w", schemaFile, db.name, err)
		}
		return nil
	})
}

// QuickCheck performs a quick health check (just ping, no integrity check)
func (db *DB) QuickCheck(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// WithTransaction executes fn within a database transaction.
//
// The transaction commits when fn returns nil and rolls back on every other
// exit path, including panics. fn's error is returned as-is so callers can
// match it with errors.Is; failures of the store itself (begin, commit,
// rollback) are reported as domain.ErrStorage.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	if db == nil {
		return domain.NewStorageError("begin", fmt.Errorf("database connection is nil"))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError("begin", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = domain.NewStorageError("transaction", fmt.Errorf("panic in transaction: %v", p))
			return
		}
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = fmt.Errorf("%w (%w)", err, domain.NewStorageError("rollback", rollbackErr))
			}
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = domain.NewStorageError("commit", commitErr)
		}
	}()

	err = fn(tx)
	return err
}
