// Package contract provides interfaces and shared utilities for shardstats internals.
package contract

import (
	"context"

	"github.com/shardsquad/shardstats/schema"
)

// MatchSource is the external store holding raw match rows.
// This allows the snapshot cache to be tested without a live database.
type MatchSource interface {
	// FetchRecent returns up to limit rows with character damage data, newest id first.
	FetchRecent(ctx context.Context, limit int) ([]schema.RawMatch, error)

	// Close releases the underlying connection.
	Close() error
}

// StoreManager defines the interface for managing durable stores.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore records every snapshot refresh attempt.
type HistoryStore interface {
	// RecordRun stores one refresh attempt and returns its id.
	RecordRun(run schema.RefreshRun) (int64, error)

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run, oldest first.
	GetAllRuns() ([]schema.RefreshRunRecord, error)

	// Close closes the underlying connection.
	Close() error
}
