package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Aryanprakashh/sync-music-app/internal/core"
	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

// Sweeper reclaims sessions that have been empty past the grace period.
// Occupied sessions are never touched, however stale. An empty session
// inside the grace period survives so a quick rejoin picks its state
// back up.
type Sweeper struct {
	Sessions core.SessionStore
	Interval time.Duration
	Grace    time.Duration
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep collects candidates first, then removes; the store forbids
// structural mutation while iterating.
func (s *Sweeper) Sweep() {
	now := time.Now()
	var stale []domain.SessionID
	s.Sessions.ForEach(func(sess core.SessionService) {
		if sess.MemberCount() > 0 {
			return
		}
		if now.Sub(sess.State().LastUpdate) > s.Grace {
			stale = append(stale, sess.ID())
		}
	})
	for _, id := range stale {
		// Re-check occupancy: a member may have joined since collection.
		if sess, ok := s.Sessions.Get(id); ok && sess.MemberCount() == 0 {
			s.Sessions.Remove(id)
			log.Info().Str("module", "app.sweeper").Str("session", string(id)).Msg("evicted stale session")
		}
	}
}
