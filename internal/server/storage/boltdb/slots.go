package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/otagate/internal/server/storage"
)

// GetSlot retrieves the value stored under key
func (s *Storage) GetSlot(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSlots)
		if bucket == nil {
			return fmt.Errorf("slots bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrSlotNotFound
		}

		// данные валидны только внутри транзакции, string() копирует
		value = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// PutSlot stores value under key
func (s *Storage) PutSlot(ctx context.Context, key, value string) error {
	if len(value) > storage.MaxSlotValueSize {
		return storage.ErrValueTooLarge
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSlots)
		if bucket == nil {
			return fmt.Errorf("slots bucket not found")
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to put slot: %w", err)
		}

		return nil
	})
}

// DeleteSlot removes key
func (s *Storage) DeleteSlot(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSlots)
		if bucket == nil {
			return fmt.Errorf("slots bucket not found")
		}

		if bucket.Get([]byte(key)) == nil {
			return storage.ErrSlotNotFound
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete slot: %w", err)
		}

		return nil
	})
}

// ListSlots returns all occupied keys
func (s *Storage) ListSlots(ctx context.Context) ([]string, error) {
	keys := []string{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSlots)
		if bucket == nil {
			return fmt.Errorf("slots bucket not found")
		}

		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	return keys, nil
}
