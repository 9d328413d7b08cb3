package timesync

import "errors"

var (
	// ErrNoDateHeader indicates that the time server response carries no Date header
	ErrNoDateHeader = errors.New("date header missing")

	// ErrInvalidDate indicates an unparsable Date header value
	ErrInvalidDate = errors.New("invalid date header")
)
