// Package registry tracks live replay sessions in a shared store so a fleet
// of replay workers is observable from the outside: which recordings are
// open, where playback stands, and whether a session has stalled.
package registry

import (
	"context"
	"errors"
	"sync"
)

// ErrSessionNotFound is returned when a session is not in the registry.
var ErrSessionNotFound = errors.New("session not found")

// Registry is the session registry contract.
type Registry interface {
	// Register adds a session, or refreshes it if already present.
	Register(ctx context.Context, session *Session) error

	// Heartbeat refreshes a session's TTL and playback progress.
	Heartbeat(ctx context.Context, session *Session) error

	// Unregister removes a session.
	Unregister(ctx context.Context, sessionID string) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// List returns all live sessions.
	List(ctx context.Context) ([]*Session, error)

	// Close releases registry resources.
	Close() error
}

// MockRegistry is a simple in-memory registry for testing.
type MockRegistry struct {
	Sessions map[string]*Session
	mu       sync.RWMutex
}

// NewMockRegistry creates an empty in-memory registry.
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{Sessions: make(map[string]*Session)}
}

func (m *MockRegistry) Register(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[session.ID] = session
	return nil
}

func (m *MockRegistry) Heartbeat(ctx context.Context, session *Session) error {
	return m.Register(ctx, session)
}

func (m *MockRegistry) Unregister(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, sessionID)
	return nil
}

func (m *MockRegistry) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, exists := m.Sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *MockRegistry) List(ctx context.Context) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessions := make([]*Session, 0, len(m.Sessions))
	for _, session := range m.Sessions {
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (m *MockRegistry) Close() error { return nil }
