package httpwire

import (
	"errors"
	"io"
)

// DefaultMaxLineLength is the line limit used when none is configured.
const DefaultMaxLineLength = 1024

// LineReader reads CRLF or LF terminated text lines one byte at a time.
// Carriage returns are dropped; the returned line never contains '\n'.
type LineReader struct {
	r       io.ByteReader
	buf     []byte
	maxLine int
}

// NewLineReader creates a LineReader over r. maxLine <= 0 selects DefaultMaxLineLength.
func NewLineReader(r io.ByteReader, maxLine int) *LineReader {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineLength
	}
	return &LineReader{
		r:       r,
		buf:     make([]byte, 0, 128),
		maxLine: maxLine,
	}
}

// ReadLine returns the next line.
// It fails with ErrLineTooLong when the line exceeds the limit and with
// ErrDisconnected when the stream ends before '\n'.
func (lr *LineReader) ReadLine() (string, error) {
	lr.buf = lr.buf[:0]
	for {
		c, err := lr.r.ReadByte()
		if err != nil {
			return "", readErr(err)
		}

		switch c {
		case '\n':
			return string(lr.buf), nil
		case '\r':
			continue
		}

		if len(lr.buf) >= lr.maxLine {
			return "", ErrLineTooLong
		}
		lr.buf = append(lr.buf, c)
	}
}

// SkipLine consumes the next line and returns at most the first limit bytes
// of it. The rest of the line is discarded without buffering.
func (lr *LineReader) SkipLine() (string, error) {
	lr.buf = lr.buf[:0]
	for {
		c, err := lr.r.ReadByte()
		if err != nil {
			return "", readErr(err)
		}

		switch c {
		case '\n':
			return string(lr.buf), nil
		case '\r':
			continue
		}

		if len(lr.buf) < lr.maxLine {
			lr.buf = append(lr.buf, c)
		}
	}
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrDisconnected
	}
	return err
}
