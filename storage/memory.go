package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/use-agent/redplanet/models"
)

// Memory is an in-process Store. It keeps an encoded copy of the record so
// callers never share memory with what is stored.
// It is safe for concurrent use.
type Memory struct {
	mu  sync.RWMutex
	doc []byte
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Upsert replaces the stored record.
func (m *Memory) Upsert(_ context.Context, data *models.MarsData) error {
	doc, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.doc = doc
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the stored record.
func (m *Memory) Get(_ context.Context) (*models.MarsData, error) {
	m.mu.RLock()
	doc := m.doc
	m.mu.RUnlock()

	if doc == nil {
		return nil, ErrNotFound
	}
	var data models.MarsData
	if err := json.Unmarshal(doc, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
