// Package domain contains entity without logic, just meta-data
package domain

import "time"

const MaxSessionIDLen = 64

type (
	SessionID string
	TrackRef  string
)

// Member represents one connection's participation meta for a session.
// No transport or lifecycle logic here.
type Member struct {
	JoinedAt time.Time
}

// PlaybackState is the durable, shared part of a session: the last track
// any member selected, the last asserted play state, and the last known
// playhead offset at LastUpdate. Position is never ticked forward by the
// server; clients extrapolate between updates.
type PlaybackState struct {
	CurrentTrack TrackRef
	IsPlaying    bool
	Position     int64 // milliseconds
	LastUpdate   time.Time
}

// Snapshot is the read-only view sent to a freshly joined connection.
type Snapshot struct {
	Track     TrackRef `json:"track"`
	IsPlaying bool     `json:"isPlaying"`
	Position  int64    `json:"position"`
}
