// Package session keeps the single administrator session of the controller.
package session

import (
	"crypto/subtle"
	"fmt"
	"sync"
	"time"
)

// DefaultIdleTimeout is the idle time after which a session is invalidated
const DefaultIdleTimeout = time.Hour

// Manager holds one global session slot. Creating a session replaces any
// previous one; validation slides the idle deadline.
type Manager struct {
	tokens        TokenGenerator
	now           func() time.Time
	lastActive    time.Time
	token         string
	timeout       time.Duration
	authenticated bool
	mu            sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.timeout = d
	}
}

// NewManager creates a Manager drawing tokens from tokens.
func NewManager(tokens TokenGenerator, opts ...Option) *Manager {
	m := &Manager{
		tokens:  tokens,
		now:     time.Now,
		timeout: DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IdleTimeout returns the configured idle timeout.
func (m *Manager) IdleTimeout() time.Duration {
	return m.timeout
}

// Create starts a new authenticated session and returns its token.
func (m *Manager) Create() (string, error) {
	token, err := m.tokens.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.authenticated = true
	m.lastActive = m.now()
	return token, nil
}

// Validate reports whether token belongs to the live session.
// A successful validation refreshes the activity time; an expired session
// is marked unauthenticated.
func (m *Manager) Validate(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token == "" || m.token == "" || !m.authenticated {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
		return false
	}

	now := m.now()
	if now.Sub(m.lastActive) > m.timeout {
		m.authenticated = false
		return false
	}

	m.lastActive = now
	return true
}

// Destroy ends the session.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.authenticated = false
}
