package httpwire

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MaxHeaderLines bounds the number of lines in a request head.
const MaxHeaderLines = 64

var methods = []string{http.MethodGet, http.MethodPost, http.MethodDelete}

const (
	prefixContentLength = "Content-Length:"
	prefixContentType   = "Content-Type:"
	prefixCookie        = "Cookie:"
)

// Head is the part of a request head the controller cares about.
// Headers other than Content-Length, Content-Type and Cookie are skipped.
type Head struct {
	Method        string
	Path          string
	RawQuery      string
	ContentType   string
	Cookie        string
	ContentLength int64
}

// ReadHead reads a request head line by line until the blank line that ends it.
func ReadHead(lr *LineReader) (*Head, error) {
	head := &Head{}
	lines := 0
	seenRequestLine := false

	for {
		line, err := lr.ReadLine()
		if err != nil {
			if errors.Is(err, ErrLineTooLong) && !seenRequestLine {
				return nil, ErrRequestLineTooLong
			}
			return nil, err
		}

		lines++
		if lines > MaxHeaderLines {
			return nil, ErrTooManyHeaders
		}

		if line == "" {
			if !seenRequestLine {
				// пустые строки перед строкой запроса игнорируются
				continue
			}
			return head, nil
		}

		if !seenRequestLine {
			if err := head.parseRequestLine(line); err != nil {
				return nil, err
			}
			seenRequestLine = true
			continue
		}

		if err := head.parseHeader(line); err != nil {
			return nil, err
		}
	}
}

func (h *Head) parseRequestLine(line string) error {
	for _, m := range methods {
		if strings.HasPrefix(line, m+" ") {
			h.Method = m
			break
		}
	}
	if h.Method == "" {
		return ErrMethodNotAllowed
	}

	// путь - между первым и вторым пробелом
	rest := line[len(h.Method)+1:]
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" || rest[0] != '/' {
		return ErrMalformedRequestLine
	}

	h.Path, h.RawQuery, _ = strings.Cut(rest, "?")
	return nil
}

func (h *Head) parseHeader(line string) error {
	switch {
	case hasPrefixFold(line, prefixContentLength):
		value := strings.TrimSpace(line[len(prefixContentLength):])
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return ErrBadContentLength
		}
		h.ContentLength = n
	case hasPrefixFold(line, prefixContentType):
		h.ContentType = strings.TrimSpace(line[len(prefixContentType):])
	case hasPrefixFold(line, prefixCookie):
		h.Cookie = strings.TrimSpace(line[len(prefixCookie):])
	}
	return nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// Request builds an *http.Request for the parsed head. body must yield the
// request body and nothing past it.
func (h *Head) Request(ctx context.Context, body io.Reader, remoteAddr string) (*http.Request, error) {
	target := h.Path
	if h.RawQuery != "" {
		target += "?" + h.RawQuery
	}

	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, ErrMalformedRequestLine
	}

	header := make(http.Header)
	if h.ContentType != "" {
		header.Set("Content-Type", h.ContentType)
	}
	if h.Cookie != "" {
		header.Set("Cookie", h.Cookie)
	}

	if body == nil || h.ContentLength == 0 {
		body = http.NoBody
	}

	req := &http.Request{
		Method:        h.Method,
		URL:           u,
		RequestURI:    target,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          newBody(body),
		ContentLength: h.ContentLength,
		RemoteAddr:    remoteAddr,
		Close:         true,
	}
	return req.WithContext(ctx), nil
}

// body keeps io.ByteReader of the underlying reader visible to handlers,
// which io.NopCloser would hide.
type body struct {
	io.Reader
	br io.ByteReader
}

func newBody(r io.Reader) io.ReadCloser {
	if r == http.NoBody {
		return http.NoBody
	}
	b := &body{Reader: r}
	b.br, _ = r.(io.ByteReader)
	return b
}

// ReadByte reads one byte, through the underlying io.ByteReader when present.
func (b *body) ReadByte() (byte, error) {
	if b.br != nil {
		return b.br.ReadByte()
	}
	var p [1]byte
	if _, err := io.ReadFull(b.Reader, p[:]); err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *body) Close() error {
	return nil
}
