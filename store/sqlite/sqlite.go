/*
Package sqlite provides a SQLite-backed implementation of book.Store.

PURPOSE:
  Keeps book-asset documents between runs. Each record is the factory's
  JSON document plus the columns the store indexes on (name, system).

KEY TABLES:
  assets: One row per book asset, keyed by unique name. Saving a name that
          exists replaces the document and bumps version.

  Schedules and deductions are never stored. They are recomputed from the
  documents on every request.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and a single connection so that
  ":memory:" databases are shared by every query.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/book.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  rec, err := factory.NewBookFactory().ToRecord(asset)
  err = store.SaveAsset(ctx, rec)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - book/store.go: Interface definition
  - book/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/depreciation-engine/book"
)

// Store implements book.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ book.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func dsn(dbPath string) string {
	if dbPath == ":memory:" || strings.HasPrefix(dbPath, "file::memory:") {
		return dbPath
	}
	return dbPath + "?_journal_mode=WAL"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		system TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- For per-system listings
	CREATE INDEX IF NOT EXISTS idx_assets_system
		ON assets(system);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ASSET STORE
// =============================================================================

// SaveAsset inserts the record or replaces the one with the same name.
func (s *Store) SaveAsset(ctx context.Context, rec book.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO assets (id, name, system, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			system = excluded.system,
			config_json = excluded.config_json,
			version = assets.version + 1,
			updated_at = excluded.updated_at
	`

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, query, id, rec.Name, rec.System, rec.ConfigJSON, now, now)
	if err != nil {
		return fmt.Errorf("failed to save asset %q: %w", rec.Name, err)
	}
	return nil
}

// GetAsset retrieves an asset record by name.
func (s *Store) GetAsset(ctx context.Context, name string) (*book.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, system, config_json, version, created_at, updated_at FROM assets WHERE name = ?",
		name,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %q: %w", name, book.ErrAssetNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAssets returns all asset records ordered by name.
func (s *Store) ListAssets(ctx context.Context) ([]book.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, system, config_json, version, created_at, updated_at FROM assets ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []book.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteAsset removes an asset record.
func (s *Store) DeleteAsset(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM assets WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("asset %q: %w", name, book.ErrAssetNotFound)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset removes every asset record.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM assets")
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (book.Record, error) {
	var rec book.Record
	var createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.System, &rec.ConfigJSON, &rec.Version, &createdAt, &updatedAt); err != nil {
		return book.Record{}, err
	}
	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return book.Record{}, fmt.Errorf("asset %q created_at: %w", rec.Name, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return book.Record{}, fmt.Errorf("asset %q updated_at: %w", rec.Name, err)
	}
	return rec, nil
}
