package storage

import "context"

// MaxSlotValueSize is the per-slot size limit enforced by every backend
const MaxSlotValueSize = 128

//go:generate moq -out slots_mock.go . SlotStorage

// SlotStorage defines interface for the flat string slot namespace (k0..kN-1)
type SlotStorage interface {
	// GetSlot retrieves the value stored under key
	// Returns ErrSlotNotFound if the slot is empty
	GetSlot(ctx context.Context, key string) (string, error)

	// PutSlot stores value under key, replacing any previous value
	// Returns ErrValueTooLarge if value exceeds MaxSlotValueSize
	PutSlot(ctx context.Context, key, value string) error

	// DeleteSlot removes key
	// Returns ErrSlotNotFound if the slot is empty
	DeleteSlot(ctx context.Context, key string) error

	// ListSlots returns all occupied keys in unspecified order
	// Returns empty slice if no slot is occupied
	ListSlots(ctx context.Context) ([]string, error)
}
