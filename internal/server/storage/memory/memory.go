// Package memory provides a thread-safe in-memory implementation of storage.Storage.
package memory

import (
	"context"
	"sync"

	"github.com/iudanet/otagate/internal/server/storage"
)

// Storage keeps slots and metadata in memory. Contents are lost on restart.
// Suitable for testing and for controllers without persistent storage.
type Storage struct {
	mu       sync.RWMutex
	slots    map[string]string
	lastSync int64
}

var _ storage.Storage = (*Storage)(nil)

// New creates an empty in-memory Storage.
func New() *Storage {
	return &Storage{slots: make(map[string]string)}
}

// GetSlot retrieves the value stored under key
// Returns ErrSlotNotFound if the slot is empty
func (s *Storage) GetSlot(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.slots[key]
	if !ok {
		return "", storage.ErrSlotNotFound
	}
	return value, nil
}

// PutSlot stores value under key, replacing any previous value
// Returns ErrValueTooLarge if value exceeds MaxSlotValueSize
func (s *Storage) PutSlot(_ context.Context, key, value string) error {
	if len(value) > storage.MaxSlotValueSize {
		return storage.ErrValueTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = value
	return nil
}

// DeleteSlot removes key
// Returns ErrSlotNotFound if the slot is empty
func (s *Storage) DeleteSlot(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[key]; !ok {
		return storage.ErrSlotNotFound
	}
	delete(s.slots, key)
	return nil
}

// ListSlots returns all occupied keys in unspecified order
func (s *Storage) ListSlots(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.slots))
	for k := range s.slots {
		keys = append(keys, k)
	}
	return keys, nil
}

// SaveLastSyncTimestamp saves the local epoch of the last successful time sync
func (s *Storage) SaveLastSyncTimestamp(_ context.Context, timestamp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSync = timestamp
	return nil
}

// GetLastSyncTimestamp retrieves the local epoch of the last successful time sync
// Returns 0 if no sync has been performed yet
func (s *Storage) GetLastSyncTimestamp(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync, nil
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}
