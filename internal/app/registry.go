package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Aryanprakashh/sync-music-app/internal/core"
	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

type connEntry struct {
	Conn     core.SignalConnection
	Sessions map[domain.SessionID]struct{}
	Cancel   context.CancelFunc
}

// Registry tracks live connections: their transport endpoint, the set of
// sessions each one joined, and the cancel func tearing its pumps down.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]*connEntry)}
}

func (r *Registry) Bind(id core.ConnID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{
		Conn:     conn,
		Sessions: make(map[domain.SessionID]struct{}),
		Cancel:   cancel,
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

func (r *Registry) Get(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

// AddSession records membership; reports false for an unknown connection
// (already disconnected).
func (r *Registry) AddSession(id core.ConnID, sid domain.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.Sessions[sid] = struct{}{}
	return true
}

func (r *Registry) SessionsOf(id core.ConnID) []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return nil
	}
	out := make([]domain.SessionID, 0, len(e.Sessions))
	for sid := range e.Sessions {
		out = append(out, sid)
	}
	return out
}

func (r *Registry) Unbind(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind connection")
}

func (r *Registry) Cancel(id core.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
