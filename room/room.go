// room/room.go
package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/cardwar/session"
)

// RoomStatus is the lobby-side status of a room, distinct from the
// battle engine's own phase.
type RoomStatus int

const (
	StatusWaiting RoomStatus = iota
	StatusPlaying
	StatusFinished
)

// MaxPlayers is the room capacity; war is strictly two-handed.
const MaxPlayers = 2

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns a random 6-character uppercase alphanumeric room
// code. Collisions are not checked; the registry's replace-on-create
// behavior is the de facto policy.
func GenerateCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(code)
}

// Room is the set of sessions gathered under one room code. Membership
// lives here; the battle engine for the room lives in the game
// registry, keyed by the same code. Join order is preserved because the
// first-joined player takes the first turn when a game starts.
type Room struct {
	ID        string
	Status    RoomStatus
	CreatedAt time.Time
	StartedAt time.Time

	players     map[string]*session.Session // sessionID -> session
	order       []string                    // sessionIDs in join order
	statusMutex sync.RWMutex
	playerMutex sync.RWMutex
}

// NewRoom creates an empty waiting room.
func NewRoom(id string) *Room {
	return &Room{
		ID:        id,
		Status:    StatusWaiting,
		CreatedAt: time.Now(),
		players:   make(map[string]*session.Session),
	}
}

// AddPlayer admits a session. Fails when the room is full or the
// session is already a member.
func (r *Room) AddPlayer(s *session.Session) bool {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	if len(r.players) >= MaxPlayers {
		return false
	}
	if _, exists := r.players[s.ID]; exists {
		return false
	}

	r.players[s.ID] = s
	r.order = append(r.order, s.ID)
	s.RoomID = r.ID
	return true
}

// RemovePlayer drops a session from the room.
func (r *Room) RemovePlayer(sessionID string) {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	if player, exists := r.players[sessionID]; exists {
		player.RoomID = ""
		delete(r.players, sessionID)
		for i, id := range r.order {
			if id == sessionID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

// GetPlayer returns a single member session.
func (r *Room) GetPlayer(sessionID string) (*session.Session, bool) {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	player, exists := r.players[sessionID]
	return player, exists
}

// GetSessions returns a snapshot of all member sessions in join order.
func (r *Room) GetSessions() []*session.Session {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	sessions := make([]*session.Session, 0, len(r.players))
	for _, id := range r.order {
		sessions = append(sessions, r.players[id])
	}
	return sessions
}

// PlayerCount returns the number of member sessions.
func (r *Room) PlayerCount() int {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return len(r.players)
}

// IsEmpty reports whether no sessions remain.
func (r *Room) IsEmpty() bool {
	return r.PlayerCount() == 0
}

func (r *Room) SetStatus(status RoomStatus) {
	r.statusMutex.Lock()
	defer r.statusMutex.Unlock()
	r.Status = status
	if status == StatusPlaying {
		r.StartedAt = time.Now()
	}
}

// GameDuration returns how long the current game has been running.
func (r *Room) GameDuration() time.Duration {
	r.statusMutex.RLock()
	defer r.statusMutex.RUnlock()
	if r.StartedAt.IsZero() {
		return 0
	}
	return time.Since(r.StartedAt)
}

func (r *Room) GetStatus() RoomStatus {
	r.statusMutex.RLock()
	defer r.statusMutex.RUnlock()
	return r.Status
}

// Manager tracks all rooms by code.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom makes a room under a fresh random code and returns it.
func (m *Manager) CreateRoom() *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room := NewRoom(GenerateCode())
	m.rooms[room.ID] = room
	return room
}

// GetOrCreateRoom returns the room for a code, creating it if a client
// joins a code nobody created first.
func (m *Manager) GetOrCreateRoom(id string) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists {
		return room
	}
	room := NewRoom(id)
	m.rooms[id] = room
	return room
}

// GetRoom returns the room for a code.
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// RemoveRoom drops a room.
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, id)
}

// Count returns the number of rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// RoomIDs returns a snapshot of all room codes.
func (m *Manager) RoomIDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	return ids
}
