package httpwire

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
)

// ResponseWriter is an http.ResponseWriter over a raw connection.
// The body is buffered and written with an exact Content-Length by Flush;
// every response closes the connection.
type ResponseWriter struct {
	w           *bufio.Writer
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
	flushed     bool
}

var _ http.ResponseWriter = (*ResponseWriter)(nil)

// NewResponseWriter creates a ResponseWriter writing to w.
func NewResponseWriter(w io.Writer) *ResponseWriter {
	return &ResponseWriter{
		w:      bufio.NewWriter(w),
		header: make(http.Header),
	}
}

// Header returns the response header map.
func (rw *ResponseWriter) Header() http.Header {
	return rw.header
}

// WriteHeader records the status code. Only the first call has effect.
func (rw *ResponseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
}

// Write buffers body bytes.
func (rw *ResponseWriter) Write(p []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.body.Write(p)
}

// Reset discards the status, headers and body written so far.
// It has no effect once the response is flushed.
func (rw *ResponseWriter) Reset() {
	if rw.flushed {
		return
	}
	rw.header = make(http.Header)
	rw.body.Reset()
	rw.status = 0
	rw.wroteHeader = false
}

// Status returns the recorded status code, 0 if nothing was written.
func (rw *ResponseWriter) Status() int {
	return rw.status
}

// Flushed reports whether the response has been sent.
func (rw *ResponseWriter) Flushed() bool {
	return rw.flushed
}

// Flush sends status line, headers and body. It is a no-op after the first call.
func (rw *ResponseWriter) Flush() error {
	if rw.flushed {
		return nil
	}
	rw.flushed = true

	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}

	rw.header.Set("Content-Length", strconv.Itoa(rw.body.Len()))
	rw.header.Set("Connection", "close")
	if rw.body.Len() > 0 && rw.header.Get("Content-Type") == "" {
		rw.header.Set("Content-Type", http.DetectContentType(rw.body.Bytes()))
	}

	if _, err := fmt.Fprintf(rw.w, "HTTP/1.1 %d %s\r\n", rw.status, http.StatusText(rw.status)); err != nil {
		return fmt.Errorf("failed to write status line: %w", err)
	}

	keys := make([]string, 0, len(rw.header))
	for k := range rw.header {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		for _, v := range rw.header[k] {
			if _, err := fmt.Fprintf(rw.w, "%s: %s\r\n", k, v); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
		}
	}

	if _, err := rw.w.WriteString("\r\n"); err != nil {
		return fmt.Errorf("failed to write header terminator: %w", err)
	}
	if _, err := rw.w.Write(rw.body.Bytes()); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}

	return rw.w.Flush()
}
