package timesync

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single time server request
const DefaultTimeout = 5 * time.Second

//go:generate moq -out source_mock.go . DateSource

// DateSource returns the raw value of a remote Date header
type DateSource interface {
	FetchDate(ctx context.Context) (string, error)
}

// HTTPDateSource reads the Date header of a HEAD response from a web server.
type HTTPDateSource struct {
	httpClient *http.Client
	url        string
}

// NewHTTPDateSource создает источник времени для url с ограничением timeout
func NewHTTPDateSource(url string, timeout time.Duration) *HTTPDateSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPDateSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
			// редиректы не нужны: Date есть в любом ответе
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// FetchDate выполняет HEAD запрос и возвращает значение заголовка Date
func (s *HTTPDateSource) FetchDate(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	date := resp.Header.Get("Date")
	if date == "" {
		return "", ErrNoDateHeader
	}
	return date, nil
}
