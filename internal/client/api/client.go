package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/otagate/pkg/api"
)

// ErrLoginFailed возвращается, если контроллер отклонил пароль
var ErrLoginFailed = errors.New("login failed")

// Имена полей и cookie контроллера
const (
	sessionCookieName = "sessionId"
	updateField       = "update"
	digestField       = "sha256"
)

// Client представляет HTTP клиент контроллера
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Редиректы не выполняем: по Location определяется результат входа
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Insert добавляет значение в первый свободный слот
func (c *Client) Insert(ctx context.Context, value string) (*api.KeyResponse, error) {
	var resp api.KeyResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/insert", api.KeyRequest{Value: value}, &resp)
	if err != nil {
		return nil, fmt.Errorf("insert request failed: %w", err)
	}
	return &resp, nil
}

// Remove удаляет запись по ключу или по значению
func (c *Client) Remove(ctx context.Context, req api.KeyRequest) (*api.KeyResponse, error) {
	var resp api.KeyResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/remove", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("remove request failed: %w", err)
	}
	return &resp, nil
}

// Print возвращает содержимое хранилища
func (c *Client) Print(ctx context.Context) (*api.ListResponse, error) {
	var resp api.ListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/print", nil, &resp); err != nil {
		return nil, fmt.Errorf("print request failed: %w", err)
	}
	return &resp, nil
}

// Time возвращает состояние часов контроллера
func (c *Client) Time(ctx context.Context) (*api.TimeResponse, error) {
	var resp api.TimeResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/time", nil, &resp); err != nil {
		return nil, fmt.Errorf("time request failed: %w", err)
	}
	return &resp, nil
}

// Health проверяет доступность контроллера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет вход администратора и возвращает токен сессии
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	form := url.Values{"password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusFound {
		return "", fmt.Errorf("%w: unexpected status %d", ErrLoginFailed, resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", ErrLoginFailed
}

// Logout завершает сессию администратора
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusFound {
		return fmt.Errorf("logout failed with status %d", resp.StatusCode)
	}
	return nil
}

// Upload отправляет образ прошивки. Тело собирается целиком, так как
// контроллер требует Content-Length. Поле sha256 идет перед образом,
// контроллер сверяет его до фиксации
func (c *Client) Upload(ctx context.Context, token, filename string, image io.Reader) (*api.UpdateResponse, error) {
	var content bytes.Buffer
	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(&content, hasher), image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField(digestField, hex.EncodeToString(hasher.Sum(nil))); err != nil {
		return nil, fmt.Errorf("failed to write digest field: %w", err)
	}
	part, err := mw.CreateFormFile(updateField, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := content.WriteTo(part); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/doupdate", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})

	var resp api.UpdateResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет JSON запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
