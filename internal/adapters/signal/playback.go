package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Aryanprakashh/sync-music-app/internal/core"
	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

// Malformed payloads are silent no-ops across all handlers; only an
// invalid join-session additionally answers the originator with an
// error frame.

func (ctl *Controller) handleJoinSession(connID core.ConnID, c *wsConn, data []byte) {
	var p struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(c, "Invalid session ID")
		return
	}

	snap, err := ctl.Orch.Join(connID, domain.SessionID(p.SessionID))
	if err != nil {
		ctl.sendError(c, "Invalid session ID")
		return
	}

	// Snapshot goes to the joiner only; existing members see nothing.
	ctl.sendJSON(c, struct {
		Type      string          `json:"type"`
		Track     domain.TrackRef `json:"track"`
		IsPlaying bool            `json:"isPlaying"`
		Position  int64           `json:"position"`
	}{
		Type:      "session-state",
		Track:     snap.Track,
		IsPlaying: snap.IsPlaying,
		Position:  snap.Position,
	})
}

func (ctl *Controller) handlePlayPause(connID core.ConnID, c *wsConn, data []byte) {
	var p struct {
		SessionID   string `json:"sessionId"`
		IsPlaying   *bool  `json:"isPlaying"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" || p.IsPlaying == nil {
		return
	}

	update := mustFrame(struct {
		Type      string `json:"type"`
		IsPlaying bool   `json:"isPlaying"`
	}{Type: "play-pause-update", IsPlaying: *p.IsPlaying})

	ctl.Orch.PlayPause(connID, domain.SessionID(p.SessionID), *p.IsPlaying, p.AccessToken, update,
		func(msg string) { ctl.sendError(c, msg) })
}

func (ctl *Controller) handleChangeTrack(connID core.ConnID, c *wsConn, data []byte) {
	var p struct {
		SessionID   string `json:"sessionId"`
		TrackURI    string `json:"trackUri"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" || p.TrackURI == "" {
		return
	}

	update := mustFrame(struct {
		Type     string `json:"type"`
		TrackURI string `json:"trackUri"`
	}{Type: "track-changed", TrackURI: p.TrackURI})

	ctl.Orch.ChangeTrack(connID, domain.SessionID(p.SessionID), domain.TrackRef(p.TrackURI), p.AccessToken, update,
		func(msg string) { ctl.sendError(c, msg) })
}

func (ctl *Controller) handleSeek(connID core.ConnID, data []byte) {
	var p struct {
		SessionID string `json:"sessionId"`
		Position  *int64 `json:"position"`
	}
	// A non-numeric position fails the unmarshal; a missing one leaves
	// the pointer nil. Both are silent no-ops, as is a negative value.
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" || p.Position == nil || *p.Position < 0 {
		return
	}

	update := mustFrame(struct {
		Type     string `json:"type"`
		Position int64  `json:"position"`
	}{Type: "seek-update", Position: *p.Position})

	ctl.Orch.Seek(connID, domain.SessionID(p.SessionID), *p.Position, update)
}

func (ctl *Controller) handleVolumeChange(connID core.ConnID, data []byte) {
	var p struct {
		SessionID string   `json:"sessionId"`
		Volume    *float64 `json:"volume"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" || p.Volume == nil {
		return
	}

	update := mustFrame(struct {
		Type   string  `json:"type"`
		Volume float64 `json:"volume"`
	}{Type: "volume-update", Volume: *p.Volume})

	log.Debug().Str("module", "signal").Str("conn", string(connID)).Float64("volume", *p.Volume).Msg("volume relay")
	ctl.Orch.VolumeChange(connID, domain.SessionID(p.SessionID), update)
}
