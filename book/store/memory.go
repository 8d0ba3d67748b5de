// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/depreciation-engine/book"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[string]book.Record
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]book.Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var _ book.Store = (*Memory)(nil)

func (m *Memory) SaveAsset(_ context.Context, rec book.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if existing, ok := m.records[rec.Name]; ok {
		rec.ID = existing.ID
		rec.Version = existing.Version + 1
		rec.CreatedAt = existing.CreatedAt
	} else {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.Version = 1
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.records[rec.Name] = rec
	return nil
}

func (m *Memory) GetAsset(_ context.Context, name string) (*book.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[name]
	if !ok {
		return nil, book.ErrAssetNotFound
	}
	return &rec, nil
}

func (m *Memory) ListAssets(_ context.Context) ([]book.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]book.Record, 0, len(m.records))
	for _, rec := range m.records {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) DeleteAsset(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[name]; !ok {
		return book.ErrAssetNotFound
	}
	delete(m.records, name)
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string]book.Record)
	return nil
}
