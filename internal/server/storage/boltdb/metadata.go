package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

// ключи bucket metadata
var keyLastSync = []byte("last_sync_timestamp")

// SaveLastSyncTimestamp saves the local epoch of the last successful time sync
func (s *Storage) SaveLastSyncTimestamp(_ context.Context, timestamp int64) error {
	if err := s.putInt64(keyLastSync, timestamp); err != nil {
		return fmt.Errorf("failed to save last sync timestamp: %w", err)
	}
	return nil
}

// GetLastSyncTimestamp retrieves the local epoch of the last successful time sync
// Returns 0 if no sync has been performed yet
func (s *Storage) GetLastSyncTimestamp(_ context.Context) (int64, error) {
	timestamp, err := s.getInt64(keyLastSync)
	if err != nil {
		return 0, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}
	return timestamp, nil
}

// putInt64 хранит значение как 8 байт big-endian
func (s *Storage) putInt64(key []byte, v int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		return bucket.Put(key, buf[:])
	})
}

// getInt64 возвращает 0 для отсутствующего ключа
func (s *Storage) getInt64(key []byte) (int64, error) {
	var v int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		raw := bucket.Get(key)
		switch len(raw) {
		case 0:
			return nil
		case 8:
			v = int64(binary.BigEndian.Uint64(raw))
			return nil
		default:
			return fmt.Errorf("corrupt value for %s: %d bytes", key, len(raw))
		}
	})

	return v, err
}
