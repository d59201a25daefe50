// Package session maps opaque bearer tokens to authenticated users.
// The manager is an explicit object constructed at startup; there is
// no package-level state.
package session

import (
	"sync"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

// Manager issues and resolves session tokens.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]models.User
}

// NewManager returns an empty, unauthenticated manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]models.User)}
}

// Issue creates a fresh token bound to the user.
func (m *Manager) Issue(user models.User) string {
	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = user
	m.mu.Unlock()
	return token
}

// Resolve returns the user bound to the token.
func (m *Manager) Resolve(token string) (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.sessions[token]
	return user, ok
}

// Update rebinds every session of the user to the new value, so role
// changes take effect without forcing a re-login.
func (m *Manager) Update(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, u := range m.sessions {
		if u.ID == user.ID {
			m.sessions[token] = user
		}
	}
}

// RevokeUser drops every session belonging to the user.
func (m *Manager) RevokeUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, u := range m.sessions {
		if u.ID == userID {
			delete(m.sessions, token)
		}
	}
}

// Revoke drops the token. Revoking an unknown token is a no-op, so
// logout is idempotent.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Reset clears all sessions.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.sessions = make(map[string]models.User)
	m.mu.Unlock()
}
