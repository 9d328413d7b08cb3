package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/otagate/internal/server/storage"
)

// GetSlot retrieves the value stored under key
func (s *Storage) GetSlot(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM slots WHERE key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrSlotNotFound
		}
		return "", fmt.Errorf("failed to get slot: %w", err)
	}

	return value, nil
}

// PutSlot stores value under key
func (s *Storage) PutSlot(ctx context.Context, key, value string) error {
	if len(value) > storage.MaxSlotValueSize {
		return storage.ErrValueTooLarge
	}

	query := `
		INSERT INTO slots (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to put slot: %w", err)
	}

	return nil
}

// DeleteSlot removes key
func (s *Storage) DeleteSlot(ctx context.Context, key string) error {
	query := `DELETE FROM slots WHERE key = ?`

	result, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrSlotNotFound
	}

	return nil
}

// ListSlots returns all occupied keys
func (s *Storage) ListSlots(ctx context.Context) ([]string, error) {
	query := `SELECT key FROM slots`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}
