/*
store.go - Persistence interface for book-asset records

PURPOSE:
  Stores book assets as documents so a book can be kept between runs.
  The document format belongs to the factory package; stores only see the
  serialized JSON plus the fields they index on.

IMPLEMENTATIONS:
  - book/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite

Schedules are never persisted. They are recomputed from the records.
*/
package book

import (
	"context"
	"time"
)

// Record is a stored book-asset document, keyed by asset name.
type Record struct {
	ID         string
	Name       string
	System     string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store persists book-asset records.
type Store interface {
	// SaveAsset inserts or replaces the record with the same name.
	// Replacing bumps Version.
	SaveAsset(ctx context.Context, rec Record) error

	// GetAsset returns ErrAssetNotFound for unknown names.
	GetAsset(ctx context.Context, name string) (*Record, error)

	// ListAssets returns every record ordered by name.
	ListAssets(ctx context.Context) ([]Record, error)

	// DeleteAsset returns ErrAssetNotFound for unknown names.
	DeleteAsset(ctx context.Context, name string) error

	// Reset removes every record.
	Reset(ctx context.Context) error
}
