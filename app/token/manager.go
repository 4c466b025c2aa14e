package token

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Manager is the sole owner of the live credential. It is an explicitly
// constructed, lifetime-scoped object injected into the session usecase, so
// independent sessions (and tests) each get their own instance.
//
// All methods are safe for concurrent use; a late-arriving verify result and
// a logout may inspect the manager at the same time.
type Manager struct {
	mu    sync.Mutex
	token string
}

// NewManager creates a new, empty token manager.
func NewManager() *Manager {
	return &Manager{}
}

// SetToken stores a credential, fully replacing any prior value.
func (m *Manager) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// Token returns the current credential, or false when none is held.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", false
	}
	return m.token, true
}

// ClearToken removes the credential unconditionally. Clearing an already
// empty manager is a no-op, not an error.
func (m *Manager) ClearToken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}

// IsTokenExpired decodes the expiry embedded in the token and compares it to
// the current time. Malformed tokens and tokens without an expiry claim count
// as expired (fail-closed). The signature is deliberately not verified here;
// that is the backend's job during Verify.
func (m *Manager) IsTokenExpired(token string) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Now().After(exp.Time)
}
