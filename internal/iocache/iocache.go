// Package iocache persists snapshots and refresh history across process runs.
package iocache

import (
	"sync"

	"github.com/shardsquad/shardstats/internal/contract"
)

// StoreManagerImpl holds the durable stores used by the snapshot cache.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	snapshot     contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetSnapshotStore returns the snapshot CacheStore, or nil when disabled.
func (mgr *StoreManagerImpl) GetSnapshotStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshot
}

// GetHistoryStore returns the HistoryStore, or nil when disabled.
func (mgr *StoreManagerImpl) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
