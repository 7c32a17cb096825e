package auth

import (
	"sync"
	"time"
)

type session struct {
	userID    int64
	expiresAt time.Time
}

// Registry is the in-process set of live sessions keyed by session id.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]session
	now      func() time.Time
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]session), now: time.Now}
}

// Add registers a session. Expired entries are pruned on the way.
func (r *Registry) Add(sessionID string, userID int64, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, s := range r.sessions {
		if !now.Before(s.expiresAt) {
			delete(r.sessions, id)
		}
	}
	r.sessions[sessionID] = session{userID: userID, expiresAt: expiresAt}
}

// Lookup returns the owner of a live session.
func (r *Registry) Lookup(sessionID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok || !r.now().Before(s.expiresAt) {
		return 0, false
	}
	return s.userID, true
}

// Remove drops a session; removing an unknown id is a no-op.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len returns the number of tracked sessions, including expired ones not yet
// pruned.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
