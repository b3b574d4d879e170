// Package iocache persists hunterstats state and run history.
package iocache

import (
	"sync"

	"github.com/huangsam/hunterstats/internal/contract"
)

// StoreManager holds the process-wide state and run stores.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	state        contract.StateStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetStateStore returns the StateStore.
func (mgr *StoreManager) GetStateStore() contract.StateStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.state
}

// GetRunStore returns the RunStore.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
