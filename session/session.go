// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/cardwar/network"
)

// Session is one connected socket. The session ID doubles as the
// player's socket ID inside a battle. Username is empty until the
// client registers one.
type Session struct {
	ID         string
	Conn       network.Connection
	Username   string
	RoomID     string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// SetUsername records the display name chosen in the lobby.
func (s *Session) SetUsername(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Username = username
}

// GetUsername returns the display name, or "Anonymous" if none was set.
func (s *Session) GetUsername() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.Username == "" {
		return "Anonymous"
	}
	return s.Username
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.LastActive = time.Now()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks all live sessions.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// GetByUsername returns every session registered under a display name.
// Usernames are only unique within one battle, not globally.
func (m *Manager) GetByUsername(username string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.GetUsername() == username {
			result = append(result, session)
		}
	}
	return result
}
