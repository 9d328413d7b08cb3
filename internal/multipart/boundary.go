// Package multipart extracts a single named field from a multipart/form-data
// body without buffering it. The field payload is streamed to a writer while
// a sliding window holds back the bytes that may still belong to the closing
// boundary.
package multipart

import (
	"strings"
)

const boundaryParam = "boundary="

// BoundaryFromContentType returns the part delimiter ("--" + boundary token)
// announced by a multipart Content-Type header value.
func BoundaryFromContentType(contentType string) (string, error) {
	mediaType, params, _ := strings.Cut(contentType, ";")
	if !strings.EqualFold(strings.TrimSpace(mediaType), "multipart/form-data") {
		return "", ErrNoBoundary
	}

	for _, param := range strings.Split(params, ";") {
		param = strings.TrimSpace(param)
		if len(param) < len(boundaryParam) || !strings.EqualFold(param[:len(boundaryParam)], boundaryParam) {
			continue
		}

		token := param[len(boundaryParam):]
		if len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"' {
			token = token[1 : len(token)-1]
		}
		// RFC 2046 ограничивает boundary 70 символами
		if token == "" || len(token) > 70 {
			return "", ErrNoBoundary
		}
		return "--" + token, nil
	}

	return "", ErrNoBoundary
}

// Marker returns the byte sequence that terminates a part payload:
// CRLF followed by the delimiter.
func Marker(delim string) []byte {
	return []byte("\r\n" + delim)
}
