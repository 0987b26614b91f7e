package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

type memberLink struct {
	conn SignalConnection
	meta domain.Member
}

// sessionImpl is a threadsafe in-memory session.
// One mutex linearizes playback mutations and their fan-out; TrySend
// never blocks, so holding it across the broadcast is safe.
// It never closes adapter-owned connections.
type sessionImpl struct {
	id domain.SessionID

	mu      sync.RWMutex
	members map[ConnID]memberLink
	state   domain.PlaybackState
}

func NewSession(id domain.SessionID) SessionService {
	return &sessionImpl{
		id:      id,
		members: make(map[ConnID]memberLink),
		state:   domain.PlaybackState{LastUpdate: time.Now()},
	}
}

func (s *sessionImpl) ID() domain.SessionID { return s.id }

func (s *sessionImpl) MemberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

func (s *sessionImpl) State() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *sessionImpl) Join(id ConnID, conn SignalConnection) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		s.members[id] = memberLink{conn: conn, meta: domain.Member{JoinedAt: time.Now()}}
		log.Info().Str("module", "core.session").Str("session", string(s.id)).Str("conn", string(id)).Msg("member joined")
	}
	return domain.Snapshot{
		Track:     s.state.CurrentTrack,
		IsPlaying: s.state.IsPlaying,
		Position:  s.state.Position,
	}
}

func (s *sessionImpl) Leave(id ConnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; ok {
		delete(s.members, id)
		log.Info().Str("module", "core.session").Str("session", string(s.id)).Str("conn", string(id)).Msg("member left")
	}
	return len(s.members) == 0
}

func (s *sessionImpl) SetPlaying(from ConnID, isPlaying bool, update Frame) PublishResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsPlaying = isPlaying
	s.state.LastUpdate = time.Now()
	return s.fanOut(from, update)
}

func (s *sessionImpl) SetTrack(from ConnID, track domain.TrackRef, update Frame) PublishResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentTrack = track
	s.state.Position = 0
	s.state.LastUpdate = time.Now()
	return s.fanOut(from, update)
}

func (s *sessionImpl) Seek(from ConnID, position int64, update Frame) (PublishResult, bool) {
	if position < 0 {
		return PublishResult{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Position = position
	s.state.LastUpdate = time.Now()
	return s.fanOut(from, update), true
}

func (s *sessionImpl) BroadcastVolume(from ConnID, update Frame) PublishResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fanOut(from, update)
}

// fanOut delivers to every member except the originator.
// Callers hold s.mu.
func (s *sessionImpl) fanOut(from ConnID, data Frame) PublishResult {
	res := PublishResult{}
	for id, m := range s.members {
		if id == from {
			continue
		}
		if err := m.conn.TrySend(data); err != nil {
			res.Dropped++
			continue
		}
		res.SentTo++
	}
	if res.Dropped > 0 {
		log.Debug().Str("module", "core.session").Str("session", string(s.id)).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", res.Dropped).Msg("broadcast result")
	}
	return res
}
