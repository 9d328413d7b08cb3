package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const keyLastSyncTimestamp = "last_sync_timestamp"

// SaveLastSyncTimestamp saves the local epoch of the last successful time sync
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error {
	query := `
		INSERT INTO metadata (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`

	if _, err := s.db.ExecContext(ctx, query, keyLastSyncTimestamp, timestamp); err != nil {
		return fmt.Errorf("failed to save last sync timestamp: %w", err)
	}

	return nil
}

// GetLastSyncTimestamp retrieves the local epoch of the last successful time sync
// Returns 0 if no sync has been performed yet
func (s *Storage) GetLastSyncTimestamp(ctx context.Context) (int64, error) {
	query := `SELECT value FROM metadata WHERE name = ?`

	var timestamp int64
	err := s.db.QueryRowContext(ctx, query, keyLastSyncTimestamp).Scan(&timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}

	return timestamp, nil
}
