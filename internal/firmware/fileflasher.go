package firmware

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ImageMagic is the first byte of a valid application image
	ImageMagic = 0xE9

	imageName   = "firmware.bin"
	stagingName = "firmware.bin.part"
)

// FileFlasher stores the update image as a file in an update directory.
// The image is staged next to the active image and renamed into place on commit,
// so a failed or aborted update never replaces the active image.
type FileFlasher struct {
	dir     string
	maxSize int64

	file    *os.File
	limit   int64
	written int64
}

var _ Flasher = (*FileFlasher)(nil)

// NewFileFlasher creates a FileFlasher storing images in dir.
// maxSize is the capacity of the update slot.
func NewFileFlasher(dir string, maxSize int64) *FileFlasher {
	return &FileFlasher{
		dir:     dir,
		maxSize: maxSize,
	}
}

// ImagePath returns the path of the committed image.
func (f *FileFlasher) ImagePath() string {
	return filepath.Join(f.dir, imageName)
}

// Begin opens a fresh staging file.
func (f *FileFlasher) Begin(maxSize int64) error {
	if f.file != nil {
		return fmt.Errorf("update already in progress")
	}

	limit := f.maxSize
	if maxSize > 0 && maxSize < limit {
		limit = maxSize
	}
	if limit <= 0 {
		return ErrImageTooLarge
	}

	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create update dir: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(f.dir, stagingName), os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open staging image: %w", err)
	}

	f.file = file
	f.limit = limit
	f.written = 0
	return nil
}

// Write appends p to the staging file. Bytes beyond the slot size are refused.
func (f *FileFlasher) Write(p []byte) (int, error) {
	if f.file == nil {
		return 0, ErrNotStarted
	}

	if f.written+int64(len(p)) > f.limit {
		return 0, ErrImageTooLarge
	}

	n, err := f.file.Write(p)
	f.written += int64(n)
	if err != nil {
		return n, fmt.Errorf("failed to write staging image: %w", err)
	}
	return n, nil
}

// End closes the staging file and commits it as the active image.
// With verify set, an empty image or one without the image magic byte is rejected.
func (f *FileFlasher) End(verify bool) error {
	if f.file == nil {
		return ErrNotStarted
	}

	if verify {
		if err := f.verify(); err != nil {
			_ = f.Abort()
			return err
		}
	}

	if err := f.file.Sync(); err != nil {
		_ = f.Abort()
		return fmt.Errorf("failed to sync staging image: %w", err)
	}
	if err := f.file.Close(); err != nil {
		f.file = nil
		_ = os.Remove(filepath.Join(f.dir, stagingName))
		return fmt.Errorf("failed to close staging image: %w", err)
	}
	f.file = nil

	if err := os.Rename(filepath.Join(f.dir, stagingName), f.ImagePath()); err != nil {
		return fmt.Errorf("failed to commit image: %w", err)
	}
	return nil
}

func (f *FileFlasher) verify() error {
	if f.written == 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	var first [1]byte
	if _, err := f.file.ReadAt(first[:], 0); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if first[0] != ImageMagic {
		return fmt.Errorf("%w: bad magic byte 0x%02x", ErrInvalidImage, first[0])
	}
	return nil
}

// Abort closes and removes the staging file.
func (f *FileFlasher) Abort() error {
	if f.file == nil {
		return nil
	}

	closeErr := f.file.Close()
	f.file = nil

	if err := os.Remove(filepath.Join(f.dir, stagingName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staging image: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close staging image: %w", closeErr)
	}
	return nil
}
