package media

import (
	"sync"
)

// Registry is the process-local map of remote room id to the set of
// users currently joined through this instance. It exists only for the
// lifetime of the process; after a restart rooms are re-provisioned as
// meetings are touched again. There is deliberately no persistence.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	mu           sync.Mutex
	participants map[string]string // user id -> display name
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*room),
	}
}

// Add registers a freshly provisioned room.
func (r *Registry) Add(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = &room{participants: make(map[string]string)}
	}
}

// Has reports whether the room is known to this instance.
func (r *Registry) Has(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID]
	return ok
}

// Join records a user in the room. Concurrent joins and leaves on the
// same room are serialized by the per-room lock.
func (r *Registry) Join(roomID, userID, displayName string) bool {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	rm.mu.Lock()
	rm.participants[userID] = displayName
	rm.mu.Unlock()
	return true
}

// Leave removes a user from the room and reports whether the room is
// now empty. Unknown room or user is a no-op.
func (r *Registry) Leave(roomID, userID string) (empty bool) {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	rm.mu.Lock()
	delete(rm.participants, userID)
	empty = len(rm.participants) == 0
	rm.mu.Unlock()
	return empty
}

// Remove forgets a room entirely.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	delete(r.rooms, roomID)
	r.mu.Unlock()
}

// Participants returns a copy of the room's current user set.
func (r *Registry) Participants(roomID string) map[string]string {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make(map[string]string, len(rm.participants))
	for id, name := range rm.participants {
		out[id] = name
	}
	return out
}
