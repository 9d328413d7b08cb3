package firmware

import "errors"

// Ошибки обновления прошивки
var (
	// ErrInitFailed indicates that the flasher could not start an update
	ErrInitFailed = errors.New("update init failed")

	// ErrWriteFailed indicates a flasher write error or short write
	ErrWriteFailed = errors.New("update write failed")

	// ErrFinalizeFailed indicates that the image did not verify or could not be committed
	ErrFinalizeFailed = errors.New("update finalize failed")

	// ErrNotStarted indicates a write or finalize without a successful Begin
	ErrNotStarted = errors.New("update not started")

	// ErrImageTooLarge indicates an image larger than the flash slot
	ErrImageTooLarge = errors.New("firmware image too large")

	// ErrInvalidImage indicates an image that failed verification
	ErrInvalidImage = errors.New("invalid firmware image")
)
