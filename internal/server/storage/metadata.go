package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing controller metadata
type MetadataStorage interface {
	// SaveLastSyncTimestamp saves the local epoch of the last successful time sync
	SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error

	// GetLastSyncTimestamp retrieves the local epoch of the last successful time sync
	// Returns 0 if no sync has been performed yet
	GetLastSyncTimestamp(ctx context.Context) (int64, error)
}

// Storage is a backend serving both slots and metadata
type Storage interface {
	SlotStorage
	MetadataStorage
	Close() error
}
