package storage

import "errors"

// Common storage errors
var (
	// ErrSlotNotFound indicates that the slot is not occupied
	ErrSlotNotFound = errors.New("slot not found")

	// ErrValueTooLarge indicates a value above the per-slot size limit
	ErrValueTooLarge = errors.New("value exceeds slot size limit")
)
