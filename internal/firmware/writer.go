// Package firmware writes an uploaded firmware image into the update slot.
package firmware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"log/slog"
)

//go:generate moq -out flasher_mock.go . Flasher

// Flasher is the persistent image sink the update is written to.
type Flasher interface {
	// Begin prepares the update slot for an image of at most maxSize bytes
	Begin(maxSize int64) error

	// Write appends p to the image and returns the number of bytes accepted
	Write(p []byte) (int, error)

	// End completes the image. With verify set the image is validated
	// before it is committed.
	End(verify bool) error

	// Abort discards a partially written image
	Abort() error
}

type writerState int

const (
	stateIdle writerState = iota
	stateWriting
	stateDone
)

// Writer wraps a Flasher with begin/write/finalize semantics and exact byte accounting.
// A Writer serves a single update.
type Writer struct {
	flasher Flasher
	logger  *slog.Logger
	state   writerState
	written int64

	hasher   hash.Hash
	expected []byte
}

// NewWriter creates a Writer over flasher.
func NewWriter(flasher Flasher, logger *slog.Logger) *Writer {
	return &Writer{
		flasher: flasher,
		logger:  logger,
		hasher:  sha256.New(),
	}
}

// ExpectDigest sets the hex SHA-256 the image must match on Finalize.
func (w *Writer) ExpectDigest(sum string) error {
	expected, err := hex.DecodeString(sum)
	if err != nil || len(expected) != sha256.Size {
		return fmt.Errorf("%w: malformed sha256 %q", ErrInvalidImage, sum)
	}
	w.expected = expected
	return nil
}

// Begin starts the update. maxSize bounds the image size.
func (w *Writer) Begin(maxSize int64) error {
	if w.state != stateIdle {
		return fmt.Errorf("%w: begin called twice", ErrInitFailed)
	}
	if err := w.flasher.Begin(maxSize); err != nil {
		w.state = stateDone
		return fmt.Errorf("%w: %w", ErrInitFailed, err)
	}
	w.state = stateWriting
	return nil
}

// Write passes p to the flasher. Any error or short write is fatal for the update.
func (w *Writer) Write(p []byte) (int, error) {
	if w.state != stateWriting {
		return 0, ErrNotStarted
	}

	n, err := w.flasher.Write(p)
	w.hasher.Write(p[:n])
	w.written += int64(n)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if n != len(p) {
		return n, fmt.Errorf("%w: accepted %d of %d bytes", ErrWriteFailed, n, len(p))
	}
	return n, nil
}

// Finalize verifies and commits the image.
func (w *Writer) Finalize() error {
	if w.state != stateWriting {
		return ErrNotStarted
	}
	w.state = stateDone

	sum := w.hasher.Sum(nil)
	if w.expected != nil && !bytes.Equal(sum, w.expected) {
		if err := w.flasher.Abort(); err != nil {
			w.logger.Error("failed to discard mismatched image", slog.Any("error", err))
		}
		return fmt.Errorf("%w: %w: sha256 %x, expected %x", ErrFinalizeFailed, ErrInvalidImage, sum, w.expected)
	}

	if err := w.flasher.End(true); err != nil {
		return fmt.Errorf("%w: %w", ErrFinalizeFailed, err)
	}

	w.logger.Info("firmware image committed",
		slog.Int64("bytes", w.written),
		slog.String("sha256", hex.EncodeToString(sum)))
	return nil
}

// Abort discards the partial image. It is a no-op unless an update is in progress.
func (w *Writer) Abort() error {
	if w.state != stateWriting {
		return nil
	}
	w.state = stateDone

	if err := w.flasher.Abort(); err != nil {
		return fmt.Errorf("failed to abort update: %w", err)
	}

	w.logger.Warn("firmware update aborted", slog.Int64("bytes_discarded", w.written))
	return nil
}

// Written returns the number of bytes accepted by the flasher.
func (w *Writer) Written() int64 {
	return w.written
}

// Digest returns the hex SHA-256 of the bytes accepted so far.
func (w *Writer) Digest() string {
	return hex.EncodeToString(w.hasher.Sum(nil))
}
