package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"cratedig/internal/services"
)

const (
	defaultBaseURL     = "https://api.spotify.com/v1"
	defaultAccountsURL = "https://accounts.spotify.com"
	playlistPageLimit  = 100
	albumPageLimit     = 50
	// pageDelay paces pagination so large playlists do not hammer the API.
	pageDelay         = 100 * time.Millisecond
	tokenExpiryMargin = 30 * time.Second
	maxAttempts       = 4
)

// Artist is the subset of the Spotify artist object used here.
type Artist struct {
	Name string `json:"name"`
}

// Album carries the album metadata consumed by extraction. When embedded in
// a Track only Name is populated by the playlist endpoints.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	TotalTracks int      `json:"total_tracks"`
}

// ExternalIDs holds cross-catalog identifiers attached to a track.
type ExternalIDs struct {
	ISRC string `json:"isrc"`
}

// Track is the subset of the Spotify track object consumed by extraction.
// Album endpoints return simplified tracks without Album or ExternalIDs.
type Track struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Type             string      `json:"type"`
	DurationMS       int         `json:"duration_ms"`
	Artists          []Artist    `json:"artists"`
	Album            Album       `json:"album"`
	ExternalIDs      ExternalIDs `json:"external_ids"`
	AvailableMarkets []string    `json:"available_markets"`
	IsPlayable       *bool       `json:"is_playable"`
	IsLocal          bool        `json:"is_local"`
}

// ArtistNames joins all artist names in catalog order.
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		if name := strings.TrimSpace(artist.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// Available reports whether the catalog lists the track as playable. When a
// market parameter was sent the API replaces available_markets with
// is_playable, so both shapes are handled.
func (t Track) Available() bool {
	if t.IsLocal {
		return false
	}
	if t.IsPlayable != nil {
		return *t.IsPlayable
	}
	return len(t.AvailableMarkets) > 0
}

// PlaylistItem wraps one playlist entry. Track is nil for entries removed
// from the catalog; Track.Type distinguishes tracks from podcast episodes.
type PlaylistItem struct {
	Track *Track `json:"track"`
}

// Playlist carries the playlist metadata used for reporting.
type Playlist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type playlistTracksPage struct {
	Items []PlaylistItem `json:"items"`
	Next  string         `json:"next"`
	Total int            `json:"total"`
}

type albumTracksPage struct {
	Items []Track `json:"items"`
	Next  string  `json:"next"`
	Total int     `json:"total"`
}

// Catalog defines the Spotify read operations used by playlist extraction.
type Catalog interface {
	Playlist(ctx context.Context, id string) (*Playlist, error)
	PlaylistTracks(ctx context.Context, id string) ([]PlaylistItem, error)
	Album(ctx context.Context, id string) (*Album, error)
	AlbumTracks(ctx context.Context, id string) ([]Track, error)
	Track(ctx context.Context, id string) (*Track, error)
}

// Client provides access to the Spotify Web API under the
// client-credentials grant.
type Client struct {
	clientID     string
	clientSecret string
	market       string
	baseURL      string
	accountsURL  string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

var _ Catalog = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIBaseURL overrides the Web API base URL.
func WithAPIBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithAccountsBaseURL overrides the accounts service base URL used for the
// token grant.
func WithAccountsBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.accountsURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// New creates a Spotify client.
func New(clientID, clientSecret, market string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errors.New("spotify client id required")
	}
	clientSecret = strings.TrimSpace(clientSecret)
	if clientSecret == "" {
		return nil, errors.New("spotify client secret required")
	}
	client := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		market:       strings.ToUpper(strings.TrimSpace(market)),
		baseURL:      defaultBaseURL,
		accountsURL:  defaultAccountsURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Playlist fetches playlist metadata (name and track total).
func (c *Client) Playlist(ctx context.Context, id string) (*Playlist, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("playlist id must not be empty")
	}
	params := url.Values{}
	params.Set("fields", "id,name,tracks.total")
	var payload Playlist
	if err := c.getJSON(ctx, "/playlists/"+id, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PlaylistTracks fetches every entry of a playlist, following pagination.
func (c *Client) PlaylistTracks(ctx context.Context, id string) ([]PlaylistItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("playlist id must not be empty")
	}
	var items []PlaylistItem
	offset := 0
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(playlistPageLimit))
		params.Set("offset", strconv.Itoa(offset))
		if c.market != "" {
			params.Set("market", c.market)
		}
		var page playlistTracksPage
		if err := c.getJSON(ctx, "/playlists/"+id+"/tracks", params, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if page.Next == "" || len(page.Items) == 0 {
			return items, nil
		}
		offset += len(page.Items)
		if err := sleepContext(ctx, pageDelay); err != nil {
			return nil, err
		}
	}
}

// Album fetches album metadata.
func (c *Client) Album(ctx context.Context, id string) (*Album, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("album id must not be empty")
	}
	params := url.Values{}
	if c.market != "" {
		params.Set("market", c.market)
	}
	var payload Album
	if err := c.getJSON(ctx, "/albums/"+id, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// AlbumTracks fetches every track of an album, following pagination. The
// returned tracks are simplified objects without album or ISRC fields.
func (c *Client) AlbumTracks(ctx context.Context, id string) ([]Track, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("album id must not be empty")
	}
	var tracks []Track
	offset := 0
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(albumPageLimit))
		params.Set("offset", strconv.Itoa(offset))
		if c.market != "" {
			params.Set("market", c.market)
		}
		var page albumTracksPage
		if err := c.getJSON(ctx, "/albums/"+id+"/tracks", params, &page); err != nil {
			return nil, err
		}
		tracks = append(tracks, page.Items...)
		if page.Next == "" || len(page.Items) == 0 {
			return tracks, nil
		}
		offset += len(page.Items)
		if err := sleepContext(ctx, pageDelay); err != nil {
			return nil, err
		}
	}
}

// Track fetches a single track by ID.
func (c *Client) Track(ctx context.Context, id string) (*Track, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("track id must not be empty")
	}
	params := url.Values{}
	if c.market != "" {
		params.Set("market", c.market)
	}
	var payload Track
	if err := c.getJSON(ctx, "/tracks/"+id, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// token returns a valid access token, requesting a fresh one when the cached
// token is missing or close to expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpiryMargin)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute token request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token endpoint returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("spotify token endpoint returned empty token")
	}
	c.accessToken = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

// getJSON performs an authenticated GET, refreshing the token on 401 and
// honoring Retry-After on 429 with a context-aware sleep.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse spotify url: %w", err)
	}
	if len(params) > 0 {
		endpoint.RawQuery = params.Encode()
	}

	for attempt := 1; ; attempt++ {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return fmt.Errorf("execute request (latency=%v): %w", latency, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err = json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode spotify response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized && attempt < maxAttempts:
			resp.Body.Close()
			c.invalidateToken()
		case resp.StatusCode == http.StatusTooManyRequests && attempt < maxAttempts:
			wait := retryAfter(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			if err := sleepContext(ctx, wait); err != nil {
				return err
			}
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("spotify %s returned 404 (latency=%v): %w", path, latency, services.ErrNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			resp.Body.Close()
			return fmt.Errorf("spotify %s returned %d (latency=%v): %w", path, resp.StatusCode, latency, services.ErrTransient)
		default:
			resp.Body.Close()
			return fmt.Errorf("spotify %s returned %d (latency=%v)", path, resp.StatusCode, latency)
		}
	}
}

func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 1 {
		return time.Second
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
