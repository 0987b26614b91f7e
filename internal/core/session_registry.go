package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

// SessionRegistryImpl maps session ids to live sessions. The map lock
// serializes create/remove decisions per id; per-session playback state
// has its own discipline inside sessionImpl, so operations on different
// sessions never contend here beyond the map access itself.
type SessionRegistryImpl struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]SessionService
}

func NewSessionRegistry() *SessionRegistryImpl {
	return &SessionRegistryImpl{sessions: make(map[domain.SessionID]SessionService)}
}

func (r *SessionRegistryImpl) GetOrCreate(id domain.SessionID) SessionService {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.sessions[id]; ok {
		return s
	}
	s = NewSession(id)
	r.sessions[id] = s
	log.Info().Str("module", "core.registry").Str("session", string(id)).Msg("session created")
	return s
}

func (r *SessionRegistryImpl) Get(id domain.SessionID) (SessionService, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *SessionRegistryImpl) Remove(id domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		log.Info().Str("module", "core.registry").Str("session", string(id)).Msg("session removed")
	}
}

func (r *SessionRegistryImpl) ForEach(fn func(SessionService)) {
	r.mu.RLock()
	snapshot := make([]SessionService, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()
	for _, s := range snapshot {
		fn(s)
	}
}

func (r *SessionRegistryImpl) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
