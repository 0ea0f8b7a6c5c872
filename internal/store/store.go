package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/sqliteurl/internal/sqlext"
	"github.com/roach88/sqliteurl/internal/sqlext/pure"
)

// Driver selects the SQLite implementation.
type Driver string

const (
	// DriverCGO is github.com/mattn/go-sqlite3.
	DriverCGO Driver = "sqlite3"

	// DriverPure is modernc.org/sqlite.
	DriverPure Driver = "sqlite"
)

// Drivers lists the supported drivers, default first.
var Drivers = []Driver{DriverCGO, DriverPure}

// ParseDriver resolves a driver name. An empty name selects DriverCGO.
func ParseDriver(name string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(name))) {
	case "", DriverCGO:
		return DriverCGO, nil
	case DriverPure:
		return DriverPure, nil
	default:
		return "", fmt.Errorf("unknown driver %q (want %s or %s)", name, DriverCGO, DriverPure)
	}
}

// Store is a SQLite database with the URL extension installed.
type Store struct {
	db     *sql.DB
	driver Driver
}

// Open opens path with the cgo driver. See OpenDriver.
func Open(path string) (*Store, error) {
	return OpenDriver(context.Background(), DriverCGO, path)
}

// OpenDriver creates or opens a SQLite database at path using driver.
// ":memory:" opens a private in-memory database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func OpenDriver(ctx context.Context, driver Driver, path string) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverCGO:
		db, err = sql.Open(sqlext.DriverName, path)
	case DriverPure:
		db, err = pure.Open(ctx, path)
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	slog.Debug("opened database", "driver", driver, "path", path)
	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver reports which driver the store was opened with.
func (s *Store) Driver() Driver {
	return s.driver
}

// HasRelations reports whether the table-valued relations (url_query_each,
// lines, lines_read) are available on this store.
// The cgo driver only carries them when built with the sqlite_vtable tag.
func (s *Store) HasRelations() bool {
	return s.driver == DriverPure || sqlext.ModuleAvailable
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
