// Package spotify is a thin client for the Spotify Web API: playback
// control, track search, profile and playlist lookups, and the OAuth
// authorization-code exchange. Responses are passed through verbatim.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Aryanprakashh/sync-music-app/internal/core"
	"github.com/Aryanprakashh/sync-music-app/internal/domain"
)

const (
	apiBase      = "https://api.spotify.com/v1"
	accountsBase = "https://accounts.spotify.com"
)

// Client talks to the Web API on behalf of one access token.
type Client struct {
	accessToken string
	httpClient  *http.Client
	baseURL     string
}

func NewClient(accessToken string) *Client {
	return &Client{
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     apiBase,
	}
}

func (c *Client) Play(ctx context.Context, track domain.TrackRef) error {
	var body io.Reader
	if track != "" {
		b, err := json.Marshal(struct {
			URIs []string `json:"uris"`
		}{URIs: []string{string(track)}})
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	return c.command(ctx, http.MethodPut, "/me/player/play", body)
}

func (c *Client) Pause(ctx context.Context) error {
	return c.command(ctx, http.MethodPut, "/me/player/pause", nil)
}

func (c *Client) SearchTracks(ctx context.Context, query string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))
	return c.getJSON(ctx, "/search?"+q.Encode())
}

func (c *Client) Me(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "/me")
}

func (c *Client) Playlists(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "/me/playlists")
}

func (c *Client) command(ctx context.Context, method, path string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Client) getJSON(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return core.ErrUnauthorized
	case resp.StatusCode >= 400:
		return fmt.Errorf("spotify api: unexpected status %d", resp.StatusCode)
	}
	return nil
}
