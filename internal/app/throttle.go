package app

import (
	"sync"
	"time"

	"github.com/Aryanprakashh/sync-music-app/internal/core"
)

// EventKind names a throttleable client command.
type EventKind string

const (
	KindPlayPause   EventKind = "play-pause"
	KindChangeTrack EventKind = "change-track"
	KindSeek        EventKind = "seek"
	KindVolume      EventKind = "volume-change"
)

type throttleKey struct {
	conn core.ConnID
	kind EventKind
}

type pendingEvent struct {
	timer *time.Timer
	apply func()
}

// ThrottleGate coalesces rapid same-kind commands from one connection
// (slider drags, drag-to-seek) into a single trailing apply per window.
//
// The first submission for a (connection, kind) arms a fixed window;
// later submissions inside it only replace the apply closure. When the
// window elapses the last closure runs exactly once. The window is not
// re-armed by later submissions, so continuous input cannot starve the
// apply forever.
type ThrottleGate struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[throttleKey]*pendingEvent
}

func NewThrottleGate(delay time.Duration) *ThrottleGate {
	return &ThrottleGate{
		delay:   delay,
		pending: make(map[throttleKey]*pendingEvent),
	}
}

func (g *ThrottleGate) Submit(conn core.ConnID, kind EventKind, apply func()) {
	key := throttleKey{conn: conn, kind: kind}
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.pending[key]; ok {
		e.apply = apply
		return
	}
	e := &pendingEvent{apply: apply}
	e.timer = time.AfterFunc(g.delay, func() { g.fire(key) })
	g.pending[key] = e
}

func (g *ThrottleGate) fire(key throttleKey) {
	g.mu.Lock()
	e, ok := g.pending[key]
	if ok {
		delete(g.pending, key)
	}
	g.mu.Unlock()
	if !ok {
		// Cancelled by disconnect between timer fire and lock acquire.
		return
	}
	e.apply()
}

// CancelConn drops every pending window of one connection. A window
// cancelled here never applies, even if its timer already fired and is
// waiting on the lock.
func (g *ThrottleGate) CancelConn(conn core.ConnID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, e := range g.pending {
		if key.conn != conn {
			continue
		}
		e.timer.Stop()
		delete(g.pending, key)
	}
}

// PendingCount reports armed windows, for diagnostics.
func (g *ThrottleGate) PendingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
