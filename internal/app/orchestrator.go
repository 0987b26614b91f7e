package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Aryanprakashh/sync-music-app/internal/core"
	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

var ErrInvalidSession = errors.New("invalid session id")

// Orchestrator mediates between connections and sessions: it throttles
// control commands, applies them to the authoritative session state,
// fans the resulting update out, and only then issues the decoupled
// playback-control call. A playback failure is reported back to the
// originator and never unwinds the committed state.
type Orchestrator struct {
	Conns    *Registry
	Sessions core.SessionStore
	Gate     *ThrottleGate
	Playback core.PlaybackController

	PlaybackTimeout time.Duration
}

// Join adds the connection to the session, creating it on first use, and
// returns the snapshot for the joiner. Never broadcast: a join must not
// disturb the members already there.
func (o *Orchestrator) Join(conn core.ConnID, sid domain.SessionID) (domain.Snapshot, error) {
	if sid == "" || len(sid) > domain.MaxSessionIDLen {
		return domain.Snapshot{}, ErrInvalidSession
	}
	sc, ok := o.Conns.Get(conn)
	if !ok {
		return domain.Snapshot{}, ErrInvalidSession
	}

	// The sweeper may remove an empty session between GetOrCreate and
	// Join. Re-validate the store still holds this instance and retry on
	// the fresh one otherwise.
	var snap domain.Snapshot
	for {
		sess := o.Sessions.GetOrCreate(sid)
		snap = sess.Join(conn, sc)
		if cur, ok := o.Sessions.Get(sid); ok && cur == sess {
			break
		}
		sess.Leave(conn)
	}

	if !o.Conns.AddSession(conn, sid) {
		// Connection vanished mid-join; undo the membership.
		if sess, ok := o.Sessions.Get(sid); ok {
			sess.Leave(conn)
		}
		return domain.Snapshot{}, ErrInvalidSession
	}
	log.Info().Str("module", "app.orch").Str("conn", string(conn)).Str("session", string(sid)).Msg("joined session")
	return snap, nil
}

// PlayPause coalesces rapid toggles, then commits the play state and
// broadcasts update to the other members.
func (o *Orchestrator) PlayPause(conn core.ConnID, sid domain.SessionID, isPlaying bool, accessToken string, update core.Frame, reportErr func(string)) {
	o.Gate.Submit(conn, KindPlayPause, func() {
		sess, ok := o.Sessions.Get(sid)
		if !ok {
			return
		}
		sess.SetPlaying(conn, isPlaying, update)
		o.controlPlayback(conn, accessToken, func(ctx context.Context) error {
			if isPlaying {
				return o.Playback.Play(ctx, accessToken, "")
			}
			return o.Playback.Pause(ctx, accessToken)
		}, "Failed to control playback", reportErr)
	})
}

// ChangeTrack commits the new track (playhead reset to 0), broadcasts,
// and asks the playback device to switch.
func (o *Orchestrator) ChangeTrack(conn core.ConnID, sid domain.SessionID, track domain.TrackRef, accessToken string, update core.Frame, reportErr func(string)) {
	o.Gate.Submit(conn, KindChangeTrack, func() {
		sess, ok := o.Sessions.Get(sid)
		if !ok {
			return
		}
		sess.SetTrack(conn, track, update)
		o.controlPlayback(conn, accessToken, func(ctx context.Context) error {
			return o.Playback.Play(ctx, accessToken, track)
		}, "Failed to change track", reportErr)
	})
}

// Seek commits the playhead; negative positions were filtered by the
// adapter, but the session rejects them again as a no-op.
func (o *Orchestrator) Seek(conn core.ConnID, sid domain.SessionID, position int64, update core.Frame) {
	o.Gate.Submit(conn, KindSeek, func() {
		sess, ok := o.Sessions.Get(sid)
		if !ok {
			return
		}
		sess.Seek(conn, position, update)
	})
}

// VolumeChange relays volume to the other members without storing it.
func (o *Orchestrator) VolumeChange(conn core.ConnID, sid domain.SessionID, update core.Frame) {
	o.Gate.Submit(conn, KindVolume, func() {
		sess, ok := o.Sessions.Get(sid)
		if !ok {
			return
		}
		sess.BroadcastVolume(conn, update)
	})
}

// OnDisconnect tears a connection down: pending throttle windows first,
// so nothing applies on behalf of a dead connection, then membership in
// every joined session, then the connection's context so its pumps stop.
// Empty sessions are left to the sweeper.
func (o *Orchestrator) OnDisconnect(conn core.ConnID) {
	o.Gate.CancelConn(conn)
	for _, sid := range o.Conns.SessionsOf(conn) {
		if sess, ok := o.Sessions.Get(sid); ok {
			sess.Leave(conn)
		}
	}
	o.Conns.Cancel(conn)
	o.Conns.Unbind(conn)
	log.Info().Str("module", "app.orch").Str("conn", string(conn)).Msg("disconnected")
}

// controlPlayback runs call in its own goroutine with a deadline; the
// session mutation and broadcast already committed and are never gated
// on, or rolled back by, the external service.
func (o *Orchestrator) controlPlayback(conn core.ConnID, accessToken string, call func(context.Context) error, failMsg string, reportErr func(string)) {
	if o.Playback == nil || accessToken == "" {
		return
	}
	timeout := o.PlaybackTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := call(ctx); err != nil {
			log.Error().Err(err).Str("module", "app.orch").Str("conn", string(conn)).Msg("playback control failed")
			if reportErr != nil {
				reportErr(failMsg)
			}
		}
	}()
}
