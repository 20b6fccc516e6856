// Package storage persists the scraped record as the single document of a
// named collection. Every write replaces the previous document outright.
package storage

import (
	"context"
	"errors"

	"github.com/use-agent/redplanet/config"
	"github.com/use-agent/redplanet/models"
)

// ErrNotFound is returned by Get before anything has been stored.
var ErrNotFound = errors.New("storage: no record stored")

// Store keeps at most one MarsData.
type Store interface {
	// Upsert replaces the stored record with data, creating it if needed.
	Upsert(ctx context.Context, data *models.MarsData) error

	// Get returns the stored record or ErrNotFound.
	Get(ctx context.Context) (*models.MarsData, error)

	Close() error
}

// Open returns the store selected by cfg: SQLite at cfg.DBPath, or an
// in-memory store when the path is empty.
func Open(cfg config.StorageConfig) (Store, error) {
	if cfg.DBPath == "" {
		return NewMemory(), nil
	}
	return OpenSQLite(cfg.DBPath, cfg.Collection)
}
