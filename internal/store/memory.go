package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps the latest snapshot in process memory. It stores an
// encoded copy so callers cannot alias its contents.
type MemoryStore struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements SnapshotStore.
func (s *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, ErrSnapshotNotFound
	}
	var snap Snapshot
	if err := json.Unmarshal(s.data, &snap); err != nil {
		return nil, NewStoreError("snapshot", "load", "decode failed", err)
	}
	return &snap, nil
}

// Save implements SnapshotStore.
func (s *MemoryStore) Save(ctx context.Context, snapshot *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidEntity)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return NewStoreError("snapshot", "save", "encode failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = data
	s.saves++
	return nil
}

// Saves returns how many snapshots have been saved.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.saves
}
