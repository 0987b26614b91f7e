package spotify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

type instanceEntry struct {
	client    *Client
	createdAt time.Time
}

// InstanceManager reuses one Client per access token instead of building
// a client on every request. Entries age out after MaxAge; Evict drops a
// token early (e.g. after an upstream 401). Last-write-wins replacement
// is fine here: this cache is not on the consistency-critical path.
type InstanceManager struct {
	MaxAge time.Duration

	mu        sync.RWMutex
	instances map[string]instanceEntry
}

func NewInstanceManager(maxAge time.Duration) *InstanceManager {
	return &InstanceManager{
		MaxAge:    maxAge,
		instances: make(map[string]instanceEntry),
	}
}

func (m *InstanceManager) clientFor(accessToken string) *Client {
	m.mu.RLock()
	e, ok := m.instances[accessToken]
	m.mu.RUnlock()
	if ok && time.Since(e.createdAt) < m.MaxAge {
		return e.client
	}

	client := NewClient(accessToken)
	m.mu.Lock()
	m.instances[accessToken] = instanceEntry{client: client, createdAt: time.Now()}
	m.mu.Unlock()
	return client
}

func (m *InstanceManager) Evict(accessToken string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, accessToken)
}

func (m *InstanceManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

// Run drops aged-out instances on a fixed interval until ctx ends.
func (m *InstanceManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *InstanceManager) cleanup() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for token, e := range m.instances {
		if now.Sub(e.createdAt) > m.MaxAge {
			delete(m.instances, token)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Str("module", "spotify").Int("removed", removed).Msg("cleaned up api instances")
	}
}

// PlaybackController / Catalog implementations, delegating to the
// token's cached client.

func (m *InstanceManager) Play(ctx context.Context, accessToken string, track domain.TrackRef) error {
	return m.clientFor(accessToken).Play(ctx, track)
}

func (m *InstanceManager) Pause(ctx context.Context, accessToken string) error {
	return m.clientFor(accessToken).Pause(ctx)
}

func (m *InstanceManager) SearchTracks(ctx context.Context, accessToken, query string, limit int) (json.RawMessage, error) {
	return m.clientFor(accessToken).SearchTracks(ctx, query, limit)
}

func (m *InstanceManager) Me(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return m.clientFor(accessToken).Me(ctx)
}

func (m *InstanceManager) Playlists(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return m.clientFor(accessToken).Playlists(ctx)
}
