// Package keystore implements the bounded key-value store of the controller.
// Values live in a fixed index space of slots k0..k(N-1); a new value always
// takes the lowest free slot, so keys of deleted entries are reused.
package keystore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/iudanet/otagate/internal/models"
	"github.com/iudanet/otagate/internal/server/storage"
)

const (
	// DefaultCapacity is the number of slots
	DefaultCapacity = 100

	// MaxValueLength is the maximum value size in bytes
	MaxValueLength = storage.MaxSlotValueSize
)

// Store is the façade over a slot backend.
type Store struct {
	slots    storage.SlotStorage
	capacity int
	mu       sync.Mutex // сериализует выбор свободного слота
}

// New creates a Store with capacity slots over backend. capacity <= 0 selects DefaultCapacity.
func New(backend storage.SlotStorage, capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		slots:    backend,
		capacity: capacity,
	}
}

// Capacity returns the number of slots.
func (s *Store) Capacity() int {
	return s.capacity
}

// ValidateValue checks value against the store limits.
func ValidateValue(value string) error {
	if value == "" {
		return ErrEmptyValue
	}
	if len(value) > MaxValueLength {
		return fmt.Errorf("%w: %d bytes, max %d", ErrValueTooLong, len(value), MaxValueLength)
	}
	return nil
}

// Add stores value in the lowest free slot and returns its key.
func (s *Store) Add(ctx context.Context, value string) (string, error) {
	if err := ValidateValue(value); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	occupied, err := s.occupied(ctx)
	if err != nil {
		return "", err
	}

	for i := 0; i < s.capacity; i++ {
		if occupied[i] {
			continue
		}

		key := models.SlotKey(i)
		if err := s.slots.PutSlot(ctx, key, value); err != nil {
			return "", fmt.Errorf("failed to store value: %w", err)
		}
		return key, nil
	}

	return "", ErrCapacityExceeded
}

// RemoveByKey deletes the entry stored under key.
func (s *Store) RemoveByKey(ctx context.Context, key string) error {
	index, err := models.SlotIndex(key)
	if err != nil || index >= s.capacity {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slots.DeleteSlot(ctx, key); err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// RemoveByValue deletes the lowest-index entry holding value and returns its key.
func (s *Store) RemoveByValue(ctx context.Context, value string) (string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return "", err
	}

	for _, e := range entries {
		if e.Value != value {
			continue
		}
		if err := s.RemoveByKey(ctx, e.Key); err != nil {
			return "", err
		}
		return e.Key, nil
	}

	return "", ErrNotFound
}

// List returns all entries in slot index order.
func (s *Store) List(ctx context.Context) ([]models.Entry, error) {
	occupied, err := s.occupied(ctx)
	if err != nil {
		return nil, err
	}

	indexes := make([]int, 0, len(occupied))
	for i := range occupied {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	entries := make([]models.Entry, 0, len(indexes))
	for _, i := range indexes {
		key := models.SlotKey(i)
		value, err := s.slots.GetSlot(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrSlotNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to read entry %s: %w", key, err)
		}
		entries = append(entries, models.Entry{Key: key, Value: value})
	}

	return entries, nil
}

// occupied returns the set of occupied slot indexes inside the index space.
// Foreign keys in the backend are ignored.
func (s *Store) occupied(ctx context.Context) (map[int]bool, error) {
	keys, err := s.slots.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	occupied := make(map[int]bool, len(keys))
	for _, key := range keys {
		index, err := models.SlotIndex(key)
		if err != nil || index >= s.capacity {
			continue
		}
		occupied[index] = true
	}
	return occupied, nil
}
