// Package store is the durable key-value layer underneath the feed. Values
// are JSON documents in a single sqlite table so that a whole record
// (user, post collection, theme flag) is overwritten atomically per write.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file" // Required by the library implementation.
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

// Keys of the three persisted records. The names are kept byte-compatible
// with the storage layout this app imports its data from.
const (
	KeyCurrentUser = "currentUser"
	KeyPosts       = "posts"
	KeyDarkMode    = "darkMode"
)

type Store struct {
	db  *sql.DB
	log *slog.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

func New(ctx context.Context, dbPath string, log *slog.Logger) (*Store, error) {
	dbFile, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	dbInstance, err := sqlite3.WithInstance(dbFile, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("create DB instance: %w", err)
	}

	srcInstance, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create source instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcInstance, "sqlite3", dbInstance)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		log.InfoContext(ctx, "No migrations to apply",
			"dbPath", dbPath)
	} else {
		log.InfoContext(ctx, "Store is migrated",
			"dbPath", dbPath)
	}

	return &Store{db: dbFile, log: log}, nil
}

// Get returns the raw JSON value stored under key, or nil when the key is
// absent. Callers own the decode and fail open to defaults on malformed
// values, so absence and corruption never become fatal here.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query := "select value from kv where key = ?"

	var value []byte
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	return value, nil
}

// Set overwrites the value stored under key. The write is synchronous and
// durable once the call returns.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	query := `insert into kv (key, value)
	values (?, ?)
	on conflict (key) do update
	set value = excluded.value`

	if _, err := s.db.ExecContext(ctx, query, key, raw); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
