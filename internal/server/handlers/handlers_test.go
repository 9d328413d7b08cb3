package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/otagate/internal/keystore"
	"github.com/iudanet/otagate/internal/server/storage/memory"
	"github.com/iudanet/otagate/internal/timesync"
)

// setupTestLogger создает logger для тестов
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// mockSessions is a hand-written Sessions for testing
type mockSessions struct {
	createErr  error
	token      string
	next       string
	destroyed  int
	validCalls int
}

func (m *mockSessions) Create() (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.token = m.next
	return m.token, nil
}

func (m *mockSessions) Validate(token string) bool {
	m.validCalls++
	return token != "" && token == m.token
}

func (m *mockSessions) Destroy() {
	m.destroyed++
	m.token = ""
}

func (m *mockSessions) IdleTimeout() time.Duration {
	return time.Hour
}

// stubClock is a fixed Clock
type stubClock struct {
	status timesync.Status
}

func (c stubClock) Status() timesync.Status {
	return c.status
}

func newTestStore() *keystore.Store {
	return keystore.New(memory.New(), keystore.DefaultCapacity)
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, dst), string(body))
}
