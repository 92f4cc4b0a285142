// internal/remote/client.go
//
// HTTP client for the remote snapshot store.
// Protocol:
//   - GET  <endpoint>?rev=true  → {seatMap, playerData, rev?}
//   - POST <endpoint>           ← {data: {seatMap, playerData}}
//
// Notes:
//   - Any non-2xx response is a sync failure.
//   - Absent or malformed seatMap/playerData fields decode to empty maps; only
//     a body that is not a JSON object fails the fetch.

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/babanuki/internal/game"
)

// ErrSyncFailure wraps every transport, status or decoding failure.
var ErrSyncFailure = errors.New("sync failure")

// FetchResponse is the GET body. Rev is optional.
type FetchResponse struct {
	SeatMap    game.SeatMap    `json:"seatMap"`
	PlayerData game.PlayerData `json:"playerData"`
	Rev        string          `json:"rev,omitempty"`
}

// StoreRequest is the POST body.
type StoreRequest struct {
	Data game.Snapshot `json:"data"`
}

// StoreResponse is what the bundled endpoint answers to a POST. Other
// endpoints may answer anything; only the status code is checked.
type StoreResponse struct {
	OK  bool   `json:"ok"`
	Rev string `json:"rev,omitempty"`
}

// Client talks to one remote store endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient builds a client with the given request timeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

// Fetch downloads the full snapshot and its revision id (may be empty).
func (c *Client) Fetch(ctx context.Context) (game.Snapshot, string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return game.Snapshot{}, "", fmt.Errorf("%w: endpoint: %v", ErrSyncFailure, err)
	}
	q := u.Query()
	q.Set("rev", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return game.Snapshot{}, "", fmt.Errorf("%w: %v", ErrSyncFailure, err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return game.Snapshot{}, "", fmt.Errorf("%w: fetch: %v", ErrSyncFailure, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return game.Snapshot{}, "", fmt.Errorf("%w: fetch: status %d", ErrSyncFailure, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return game.Snapshot{}, "", fmt.Errorf("%w: read body: %v", ErrSyncFailure, err)
	}
	snap, rev, err := DecodeFetch(body)
	if err != nil {
		return game.Snapshot{}, "", fmt.Errorf("%w: %v", ErrSyncFailure, err)
	}
	return snap, rev, nil
}

// Store uploads snap, replacing whatever the remote held.
func (c *Client) Store(ctx context.Context, snap game.Snapshot) error {
	body, err := json.Marshal(StoreRequest{Data: snap.Normalize()})
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSyncFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: store: %v", ErrSyncFailure, err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: store: status %d", ErrSyncFailure, res.StatusCode)
	}
	return nil
}

// DecodeFetch parses a GET body field by field so one bad field does not
// discard the other.
func DecodeFetch(body []byte) (game.Snapshot, string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return game.Snapshot{}, "", fmt.Errorf("decode body: %w", err)
	}

	snap := game.EmptySnapshot()
	if raw, ok := fields["seatMap"]; ok {
		if err := json.Unmarshal(raw, &snap.SeatMap); err != nil {
			log.Debug().Err(err).Msg("remote seatMap malformed; using empty map")
			snap.SeatMap = game.SeatMap{}
		}
	}
	if raw, ok := fields["playerData"]; ok {
		if err := json.Unmarshal(raw, &snap.PlayerData); err != nil {
			log.Debug().Err(err).Msg("remote playerData malformed; using empty map")
			snap.PlayerData = game.PlayerData{}
		}
	}
	var rev string
	if raw, ok := fields["rev"]; ok {
		_ = json.Unmarshal(raw, &rev)
	}
	return snap.Normalize(), rev, nil
}
