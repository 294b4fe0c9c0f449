package storage

import (
	"sync"

	"lapwatch/internal/core/model"
)

// MemoryStore keeps the stopwatch record in memory. Saves and loads can be
// made to fail to exercise degraded storage.
type MemoryStore struct {
	mu      sync.Mutex
	state   *model.State
	saveErr error
	loadErr error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the last saved record.
func (store *MemoryStore) Load() (model.State, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.loadErr != nil {
		return model.State{}, store.loadErr
	}
	if store.state == nil {
		return model.State{}, model.ErrStateNotFound
	}
	return store.state.Clone(), nil
}

// Save keeps a copy of state.
func (store *MemoryStore) Save(state model.State) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.saveErr != nil {
		return store.saveErr
	}
	saved := state.Clone()
	store.state = &saved
	return nil
}

// FailSaves makes subsequent saves return err; nil restores normal behavior.
func (store *MemoryStore) FailSaves(err error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.saveErr = err
}

// FailLoads makes subsequent loads return err; nil restores normal behavior.
func (store *MemoryStore) FailLoads(err error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.loadErr = err
}
