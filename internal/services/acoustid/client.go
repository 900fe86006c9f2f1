// Package acoustid provides a client for the AcoustID lookup service, which
// resolves Chromaprint fingerprints to MusicBrainz recordings.
package acoustid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cratedig/internal/services"
)

// defaultMeta requests recording and release-group metadata with compressed
// fingerprint handling. url.Values encodes the spaces as the "+" separators
// the service documents.
const defaultMeta = "recordings releasegroups compress"

// Artist is the subset of the AcoustID artist object used here.
type Artist struct {
	Name string `json:"name"`
}

// Recording identifies one MusicBrainz recording attached to a result.
type Recording struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Artists []Artist `json:"artists"`
}

// Result is one fingerprint lookup result with its match score.
type Result struct {
	ID         string      `json:"id"`
	Score      float64     `json:"score"`
	Recordings []Recording `json:"recordings"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response models the AcoustID lookup payload.
type Response struct {
	Status  string    `json:"status"`
	Error   *apiError `json:"error"`
	Results []Result  `json:"results"`
}

// Match is one (score, recording) pair flattened from a lookup response.
type Match struct {
	Score       float64
	RecordingID string
	Title       string
	Artist      string
}

// Matches flattens results into per-recording matches in response order.
// Artist names are joined with "; " when a recording credits several.
func (r *Response) Matches() []Match {
	var matches []Match
	for _, result := range r.Results {
		for _, recording := range result.Recordings {
			names := make([]string, 0, len(recording.Artists))
			for _, artist := range recording.Artists {
				if name := strings.TrimSpace(artist.Name); name != "" {
					names = append(names, name)
				}
			}
			matches = append(matches, Match{
				Score:       result.Score,
				RecordingID: recording.ID,
				Title:       recording.Title,
				Artist:      strings.Join(names, "; "),
			})
		}
	}
	return matches
}

// Identifier defines the lookup operation used by fingerprint verification.
type Identifier interface {
	Lookup(ctx context.Context, fingerprint string, durationSeconds int) (*Response, error)
}

// Client provides access to the AcoustID lookup API.
type Client struct {
	apiKey     string
	lookupURL  string
	meta       string
	httpClient *http.Client
}

var _ Identifier = (*Client)(nil)

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

// New creates an AcoustID client. lookupURL is the full lookup endpoint.
func New(apiKey, lookupURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("acoustid api key required")
	}
	lookupURL = strings.TrimSpace(lookupURL)
	if lookupURL == "" {
		return nil, errors.New("acoustid lookup url required")
	}
	client := &Client{
		apiKey:     apiKey,
		lookupURL:  lookupURL,
		meta:       defaultMeta,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup submits a fingerprint to the identity service. Fingerprints can be
// kilobytes long, so the request goes out as a POST form.
func (c *Client) Lookup(ctx context.Context, fingerprint string, durationSeconds int) (*Response, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return nil, errors.New("fingerprint must not be empty")
	}
	if durationSeconds <= 0 {
		return nil, errors.New("duration must be positive")
	}

	form := url.Values{}
	form.Set("client", c.apiKey)
	form.Set("format", "json")
	form.Set("fingerprint", fingerprint)
	form.Set("duration", strconv.Itoa(durationSeconds))
	form.Set("meta", c.meta)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.lookupURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("acoustid lookup returned %d (latency=%v): %w", resp.StatusCode, latency, services.ErrTransient)
	default:
		return nil, fmt.Errorf("acoustid lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode acoustid response: %w", err)
	}
	if payload.Status != "ok" {
		if payload.Error != nil {
			return nil, fmt.Errorf("acoustid lookup failed: %s", payload.Error.Message)
		}
		return nil, fmt.Errorf("acoustid lookup failed: status %q", payload.Status)
	}
	return &payload, nil
}
