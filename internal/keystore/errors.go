package keystore

import "errors"

var (
	// ErrEmptyValue indicates an empty value
	ErrEmptyValue = errors.New("value is required")

	// ErrValueTooLong indicates a value above MaxValueLength
	ErrValueTooLong = errors.New("value too long")

	// ErrCapacityExceeded indicates that every slot is occupied
	ErrCapacityExceeded = errors.New("store is full")

	// ErrNotFound indicates an unknown key or value
	ErrNotFound = errors.New("entry not found")
)
