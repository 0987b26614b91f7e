package core

import "github.com/Aryanprakashh/sync-music-app/internal/domain"

// Frame is an encoded outbound message (JSON text frame).
type Frame []byte

// ConnID identifies one live transport connection. Assigned by the
// transport layer, never reused.
type ConnID string

// SignalConnection abstracts a client's messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped int
}

// SessionService is the core-facing API of one listening session.
// It owns the membership set and the shared playback state but never
// touches transport resources.
//
// Every mutator runs mutation and fan-out as one atomic step, so within
// a session broadcasts reach each recipient in mutation order. Delivery
// itself is best-effort: a slow recipient is counted in Dropped and
// skipped, never waited on.
type SessionService interface {
	ID() domain.SessionID
	MemberCount() int
	State() domain.PlaybackState

	// Join is idempotent and returns the snapshot for the joiner only.
	// It never changes playback fields and never broadcasts.
	Join(id ConnID, conn SignalConnection) domain.Snapshot
	// Leave is idempotent and reports whether the session is now empty.
	Leave(id ConnID) bool

	SetPlaying(from ConnID, isPlaying bool, update Frame) PublishResult
	// SetTrack resets the playhead to 0. Every track change is a hard
	// reset; there is no resume-from-previous-track.
	SetTrack(from ConnID, track domain.TrackRef, update Frame) PublishResult
	// Seek ignores negative positions and reports whether it applied.
	Seek(from ConnID, position int64, update Frame) (PublishResult, bool)
	// BroadcastVolume relays without storing anything: volume is not part
	// of session state and late joiners get no volume hint.
	BroadcastVolume(from ConnID, update Frame) PublishResult
}

// SessionStore is the registry of live sessions.
type SessionStore interface {
	GetOrCreate(id domain.SessionID) SessionService
	Get(id domain.SessionID) (SessionService, bool)
	Remove(id domain.SessionID)
	// ForEach must not be used to insert or delete entries; collect ids
	// first if removal is needed.
	ForEach(fn func(SessionService))
	Count() int
}
