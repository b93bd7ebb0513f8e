package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps an in-memory SQLite database holding the session report list.
// Nothing is written to disk; the list lives as long as the process.
type DB struct {
	db *sql.DB
}

// DSN returns the SQLite connection string for a named in-memory database.
func DSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// New opens the named in-memory database and applies migrations.
func New(ctx context.Context, name string) (*DB, error) {
	db, err := sql.Open("sqlite", DSN(name))
	if err != nil {
		return nil, fmt.Errorf("opening report db: %w", err)
	}
	// A memory database exists only while a connection holds it open.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging report db: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close releases the database; all reports are discarded.
func (d *DB) Close() error {
	return d.db.Close()
}

// RunMigrations applies all pending embedded migrations to db.
func RunMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening migration source: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	// m.Close is skipped on purpose: it would close the shared *sql.DB.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
