package httpwire

import (
	"errors"
	"net"
	"net/http"
)

// Ошибки разбора запроса
var (
	// ErrDisconnected indicates that the peer closed the stream before the
	// request head was complete. No response is sent.
	ErrDisconnected = errors.New("connection closed before end of line")

	// ErrLineTooLong indicates that a header line exceeded the line limit
	ErrLineTooLong = errors.New("line too long")

	// ErrRequestLineTooLong indicates that the request line exceeded the line limit
	ErrRequestLineTooLong = errors.New("request line too long")

	// ErrTooManyHeaders indicates that the head has more lines than allowed
	ErrTooManyHeaders = errors.New("too many header lines")

	// ErrMethodNotAllowed indicates a request method other than GET, POST or DELETE
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrMalformedRequestLine indicates a request line without a path
	ErrMalformedRequestLine = errors.New("malformed request line")

	// ErrBadContentLength indicates a Content-Length value that is not a non-negative integer
	ErrBadContentLength = errors.New("invalid content length")
)

// StatusFor maps a head parsing error to the status code sent to the client.
// It returns 0 for errors that must not be answered.
func StatusFor(err error) int {
	var netErr net.Error
	switch {
	case errors.Is(err, ErrDisconnected), errors.As(err, &netErr):
		return 0
	case errors.Is(err, ErrRequestLineTooLong):
		return http.StatusRequestURITooLong
	case errors.Is(err, ErrLineTooLong), errors.Is(err, ErrTooManyHeaders):
		return http.StatusRequestHeaderFieldsTooLarge
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusBadRequest
	}
}
