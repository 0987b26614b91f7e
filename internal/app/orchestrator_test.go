package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Aryanprakashh/sync-music-app/internal/core"
	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

type captureConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (c *captureConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *captureConn) Close() {}

func (c *captureConn) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		out[i] = string(f)
	}
	return out
}

type fakePlayback struct {
	mu     sync.Mutex
	err    error
	plays  []domain.TrackRef
	pauses int
}

func (p *fakePlayback) Play(_ context.Context, _ string, track domain.TrackRef) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.plays = append(p.plays, track)
	return nil
}

func (p *fakePlayback) Pause(context.Context, string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pauses++
	return nil
}

func newTestOrch(playback core.PlaybackController) *Orchestrator {
	return &Orchestrator{
		Conns:           NewRegistry(),
		Sessions:        core.NewSessionRegistry(),
		Gate:            NewThrottleGate(10 * time.Millisecond),
		Playback:        playback,
		PlaybackTimeout: time.Second,
	}
}

func bind(o *Orchestrator, id core.ConnID) *captureConn {
	c := &captureConn{}
	o.Conns.Bind(id, c, func() {})
	return c
}

const settle = 80 * time.Millisecond

func TestJoinValidation(t *testing.T) {
	o := newTestOrch(nil)
	bind(o, "c1")

	if _, err := o.Join("c1", ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Join with empty id: err = %v, want ErrInvalidSession", err)
	}
	if _, err := o.Join("ghost", "S1"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Join from unknown connection: err = %v, want ErrInvalidSession", err)
	}
	if o.Sessions.Count() != 0 {
		t.Fatalf("rejected joins created %d sessions", o.Sessions.Count())
	}
}

func TestLateJoinerReceivesSnapshot(t *testing.T) {
	o := newTestOrch(nil)
	bind(o, "c1")
	bind(o, "c2")

	if _, err := o.Join("c1", "ABC123"); err != nil {
		t.Fatal(err)
	}
	o.ChangeTrack("c1", "ABC123", "track:42", "", core.Frame(`{"type":"track-changed","trackUri":"track:42"}`), nil)
	time.Sleep(settle)

	snap, err := o.Join("c2", "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Track != "track:42" || snap.IsPlaying || snap.Position != 0 {
		t.Fatalf("snapshot = %+v, want track:42 paused at 0", snap)
	}
}

func TestBroadcastReachesOnlySiblings(t *testing.T) {
	o := newTestOrch(nil)
	a := bind(o, "a")
	b := bind(o, "b")

	if _, err := o.Join("a", "S1"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Join("b", "S1"); err != nil {
		t.Fatal(err)
	}

	update := core.Frame(`{"type":"play-pause-update","isPlaying":true}`)
	o.PlayPause("a", "S1", true, "", update, nil)
	time.Sleep(settle)

	if got := a.received(); len(got) != 0 {
		t.Fatalf("originator received %v, want nothing", got)
	}
	got := b.received()
	if len(got) != 1 || got[0] != string(update) {
		t.Fatalf("sibling received %v, want exactly the update frame", got)
	}

	sess, _ := o.Sessions.Get("S1")
	if !sess.State().IsPlaying {
		t.Fatal("session state not mutated")
	}
}

func TestMutatingUnknownSessionIsNoOp(t *testing.T) {
	o := newTestOrch(nil)
	bind(o, "c1")

	o.Seek("c1", "nope", 1000, core.Frame(`{}`))
	o.PlayPause("c1", "nope", true, "", core.Frame(`{}`), nil)
	time.Sleep(settle)

	if o.Sessions.Count() != 0 {
		t.Fatalf("mutating an unknown session fabricated %d sessions", o.Sessions.Count())
	}
}

func TestDisconnectCancelsPendingAndLeaves(t *testing.T) {
	o := newTestOrch(nil)
	bind(o, "c1")
	b := bind(o, "c2")

	if _, err := o.Join("c1", "S1"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Join("c2", "S1"); err != nil {
		t.Fatal(err)
	}

	o.Seek("c1", "S1", 9000, core.Frame(`{"type":"seek-update","position":9000}`))
	o.OnDisconnect("c1")
	time.Sleep(settle)

	sess, ok := o.Sessions.Get("S1")
	if !ok {
		t.Fatal("session disappeared; sweeper owns eviction, not disconnect")
	}
	if pos := sess.State().Position; pos != 0 {
		t.Fatalf("position = %d; a disconnected connection's pending seek applied", pos)
	}
	if got := b.received(); len(got) != 0 {
		t.Fatalf("sibling received %v after originator disconnect, want nothing", got)
	}
	if sess.MemberCount() != 1 {
		t.Fatalf("MemberCount = %d after disconnect, want 1", sess.MemberCount())
	}
	if o.Conns.Count() != 1 {
		t.Fatalf("connection registry holds %d entries, want 1", o.Conns.Count())
	}
}

func TestDisconnectReleasesConnContext(t *testing.T) {
	o := newTestOrch(nil)

	ctx, cancel := context.WithCancel(context.Background())
	o.Conns.Bind("c1", &captureConn{}, cancel)

	if _, err := o.Join("c1", "S1"); err != nil {
		t.Fatal(err)
	}
	o.OnDisconnect("c1")

	select {
	case <-ctx.Done():
	default:
		t.Fatal("connection context still live after disconnect")
	}
	if o.Conns.Count() != 0 {
		t.Fatalf("connection registry holds %d entries after disconnect", o.Conns.Count())
	}
}

func TestPlaybackFailureReportsToOriginatorOnly(t *testing.T) {
	pb := &fakePlayback{err: errors.New("device gone")}
	o := newTestOrch(pb)
	bind(o, "a")
	b := bind(o, "b")

	if _, err := o.Join("a", "S1"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Join("b", "S1"); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var reported []string
	o.PlayPause("a", "S1", true, "tok", core.Frame(`{"type":"play-pause-update","isPlaying":true}`), func(msg string) {
		mu.Lock()
		reported = append(reported, msg)
		mu.Unlock()
	})
	time.Sleep(settle)

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0] != "Failed to control playback" {
		t.Fatalf("reported = %v, want one playback failure message", reported)
	}

	// Committed state and the broadcast survive the failure.
	sess, _ := o.Sessions.Get("S1")
	if !sess.State().IsPlaying {
		t.Fatal("playback failure rolled back the session mutation")
	}
	if got := b.received(); len(got) != 1 {
		t.Fatalf("sibling received %d frames, want the already-sent update", len(got))
	}
}

func TestPlaybackCommands(t *testing.T) {
	pb := &fakePlayback{}
	o := newTestOrch(pb)
	bind(o, "a")

	if _, err := o.Join("a", "S1"); err != nil {
		t.Fatal(err)
	}

	o.ChangeTrack("a", "S1", "track:7", "tok", core.Frame(`{}`), nil)
	time.Sleep(settle)
	o.PlayPause("a", "S1", false, "tok", core.Frame(`{}`), nil)
	time.Sleep(settle)

	pb.mu.Lock()
	defer pb.mu.Unlock()
	if len(pb.plays) != 1 || pb.plays[0] != "track:7" {
		t.Fatalf("plays = %v, want [track:7]", pb.plays)
	}
	if pb.pauses != 1 {
		t.Fatalf("pauses = %d, want 1", pb.pauses)
	}
}

func TestNoPlaybackCallWithoutToken(t *testing.T) {
	pb := &fakePlayback{}
	o := newTestOrch(pb)
	bind(o, "a")

	if _, err := o.Join("a", "S1"); err != nil {
		t.Fatal(err)
	}
	o.PlayPause("a", "S1", true, "", core.Frame(`{}`), nil)
	time.Sleep(settle)

	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.pauses != 0 || len(pb.plays) != 0 {
		t.Fatal("playback called without an access token")
	}
}

func TestConnectionCanJoinMultipleSessions(t *testing.T) {
	o := newTestOrch(nil)
	bind(o, "c1")

	if _, err := o.Join("c1", "S1"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Join("c1", "S2"); err != nil {
		t.Fatal(err)
	}

	o.OnDisconnect("c1")
	for _, sid := range []domain.SessionID{"S1", "S2"} {
		sess, ok := o.Sessions.Get(sid)
		if !ok {
			t.Fatalf("session %s disappeared on disconnect", sid)
		}
		if sess.MemberCount() != 0 {
			t.Fatalf("session %s still has %d members after disconnect", sid, sess.MemberCount())
		}
	}
}
