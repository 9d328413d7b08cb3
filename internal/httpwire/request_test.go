package httpwire

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHead_Success(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Head
	}{
		{
			name: "simple get",
			raw:  "GET / HTTP/1.1\r\nHost: device\r\n\r\n",
			want: Head{Method: "GET", Path: "/"},
		},
		{
			name: "get with query",
			raw:  "GET /?error=1 HTTP/1.1\r\n\r\n",
			want: Head{Method: "GET", Path: "/", RawQuery: "error=1"},
		},
		{
			name: "post with selected headers",
			raw: "POST /login HTTP/1.1\r\n" +
				"Host: device\r\n" +
				"Content-Type: application/x-www-form-urlencoded\r\n" +
				"Content-Length: 14\r\n" +
				"Cookie: sessionId=abc; theme=dark\r\n" +
				"\r\n",
			want: Head{
				Method:        "POST",
				Path:          "/login",
				ContentType:   "application/x-www-form-urlencoded",
				ContentLength: 14,
				Cookie:        "sessionId=abc; theme=dark",
			},
		},
		{
			name: "delete with lowercase headers",
			raw:  "DELETE /api/keys HTTP/1.1\r\ncontent-length: 6\r\ncookie: sessionId=z\r\n\r\n",
			want: Head{Method: "DELETE", Path: "/api/keys", ContentLength: 6, Cookie: "sessionId=z"},
		},
		{
			name: "leading blank lines and bare LF",
			raw:  "\r\n\nGET /api/time HTTP/1.0\n\n",
			want: Head{Method: "GET", Path: "/api/time"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, err := ReadHead(newTestLineReader(tt.raw, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *head)
		})
	}
}

func TestReadHead_Errors(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		maxLine    int
		wantErr    error
		wantStatus int
	}{
		{
			name:       "disconnect before blank line",
			raw:        "GET / HTTP/1.1\r\nHost: x\r\n",
			wantErr:    ErrDisconnected,
			wantStatus: 0,
		},
		{
			name:       "unsupported method",
			raw:        "PUT / HTTP/1.1\r\n\r\n",
			wantErr:    ErrMethodNotAllowed,
			wantStatus: 405,
		},
		{
			name:       "missing path",
			raw:        "GET  HTTP/1.1\r\n\r\n",
			wantErr:    ErrMalformedRequestLine,
			wantStatus: 400,
		},
		{
			name:       "bad content length",
			raw:        "POST / HTTP/1.1\r\nContent-Length: -5\r\n\r\n",
			wantErr:    ErrBadContentLength,
			wantStatus: 400,
		},
		{
			name:       "request line too long",
			raw:        "GET /" + strings.Repeat("a", 64) + " HTTP/1.1\r\n\r\n",
			maxLine:    32,
			wantErr:    ErrRequestLineTooLong,
			wantStatus: 414,
		},
		{
			name:       "header line too long",
			raw:        "GET / HTTP/1.1\r\nX-Junk: " + strings.Repeat("j", 64) + "\r\n\r\n",
			maxLine:    32,
			wantErr:    ErrLineTooLong,
			wantStatus: 431,
		},
		{
			name:       "too many headers",
			raw:        "GET / HTTP/1.1\r\n" + strings.Repeat("X-A: b\r\n", MaxHeaderLines) + "\r\n",
			wantErr:    ErrTooManyHeaders,
			wantStatus: 431,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, err := ReadHead(newTestLineReader(tt.raw, tt.maxLine))
			assert.Nil(t, head)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantStatus, StatusFor(err))
		})
	}
}

func TestHead_Request(t *testing.T) {
	head := &Head{
		Method:        "POST",
		Path:          "/login",
		RawQuery:      "next=%2F",
		ContentType:   "application/x-www-form-urlencoded",
		Cookie:        "sessionId=abc",
		ContentLength: 11,
	}

	req, err := head.Request(context.Background(), strings.NewReader("password=pw"), "10.0.0.2:5000")
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/login", req.URL.Path)
	assert.Equal(t, "/", req.URL.Query().Get("next"))
	assert.Equal(t, "10.0.0.2:5000", req.RemoteAddr)
	assert.Equal(t, int64(11), req.ContentLength)

	cookie, err := req.Cookie("sessionId")
	require.NoError(t, err)
	assert.Equal(t, "abc", cookie.Value)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "password=pw", string(body))
}
