package session

import (
	"sync"

	"github.com/raseed-cloud/raseed/internal/metrics"
)

// Registry is the process-wide table of live sessions, keyed by generated
// session id. One identity may hold any number of concurrent sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
	metrics.SessionsActive.Set(float64(len(r.sessions)))
}

// Remove closes and unregisters a session. Unknown ids are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Close()
		delete(r.sessions, id)
	}
	metrics.SessionsActive.Set(float64(len(r.sessions)))
}

// Get returns a session by id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
