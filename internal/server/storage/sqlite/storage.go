// Package sqlite stores the board, customers and vehicles in a single
// SQLite database. Every write is a conditional UPDATE on the row version,
// so the database itself arbitrates between concurrent operators.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iudanet/garageboard/internal/server/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ storage.Storage = (*Storage)(nil)

// Настройки соединения; foreign_keys нужен для связи vehicles -> customers
var connPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Storage is the SQLite implementation of storage.Storage.
type Storage struct {
	db *sql.DB
}

// New opens dbPath, applies pending migrations and returns the storage.
// ":memory:" gives a private in-memory board.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Один писатель: условные UPDATE выполняются строго последовательно
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Storage{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	for _, pragma := range connPragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := s.migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// migrate applies the embedded goose migrations.
func (s *Storage) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// DB exposes the connection to tests.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Ping checks that the database answers. It backs the health endpoint.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
