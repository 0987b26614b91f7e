package core

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

// ErrUnauthorized marks an upstream 401: the caller should drop the
// token's cached client and ask the user to re-authenticate.
var ErrUnauthorized = errors.New("access token rejected")

// PlaybackController drives the real playback device. Calls are issued
// fire-and-forget after a session mutation commits; a failure is
// reported to the originator only and never rolls the session back.
type PlaybackController interface {
	// Play starts playback, switching to track when non-empty.
	Play(ctx context.Context, accessToken string, track domain.TrackRef) error
	Pause(ctx context.Context, accessToken string) error
}

// Catalog is the narrow view of the music catalog the HTTP API proxies.
// Responses are passed through verbatim.
type Catalog interface {
	SearchTracks(ctx context.Context, accessToken, query string, limit int) (json.RawMessage, error)
	Me(ctx context.Context, accessToken string) (json.RawMessage, error)
	Playlists(ctx context.Context, accessToken string) (json.RawMessage, error)
}
