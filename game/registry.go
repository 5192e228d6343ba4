// game/registry.go
package game

import (
	"sync"
)

// Registry indexes at most one battle per room ID. It is an injectable
// store rather than a package global so the server owns its lifetime
// and tests can build isolated instances. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	battles map[string]*CardBattle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		battles: make(map[string]*CardBattle),
	}
}

// Put stores the battle for a room, silently replacing any prior entry.
func (r *Registry) Put(roomID string, battle *CardBattle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.battles[roomID] = battle
}

// Get returns the battle for a room.
func (r *Registry) Get(roomID string) (*CardBattle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	battle, exists := r.battles[roomID]
	return battle, exists
}

// Remove drops the battle for a room, if any.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.battles, roomID)
}

// Count returns the number of registered battles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.battles)
}
