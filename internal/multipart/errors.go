package multipart

import "errors"

var (
	// ErrNoBoundary indicates a Content-Type without a multipart boundary parameter
	ErrNoBoundary = errors.New("multipart boundary not found in content type")

	// ErrFieldNotFound indicates that the body ended without the requested field
	ErrFieldNotFound = errors.New("multipart field not found")

	// ErrTruncated indicates that the stream ended before the closing boundary
	ErrTruncated = errors.New("multipart payload truncated before closing boundary")
)
