package spotify_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cratedig/internal/services"
	"cratedig/internal/services/spotify"
)

// newTestServer serves the token grant plus the supplied API handler. The
// issued token embeds the grant count so refreshes are observable.
func newTestServer(t *testing.T, api http.HandlerFunc) (*httptest.Server, *int) {
	t.Helper()
	tokenCalls := new(int)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		*tokenCalls++
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			t.Errorf("unexpected basic auth: %q %q", user, pass)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("unexpected token form: %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":3600}`, *tokenCalls)
	})
	mux.HandleFunc("/", api)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, tokenCalls
}

func newClient(t *testing.T, server *httptest.Server, market string) *spotify.Client {
	t.Helper()
	client, err := spotify.New("client-id", "client-secret", market,
		spotify.WithAPIBaseURL(server.URL),
		spotify.WithAccountsBaseURL(server.URL),
		spotify.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := spotify.New("", "secret", "US"); err == nil {
		t.Fatal("expected error when client id missing")
	}
	if _, err := spotify.New("id", "  ", "US"); err == nil {
		t.Fatal("expected error when client secret missing")
	}
}

func TestPlaylistTracksPaginates(t *testing.T) {
	server, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/pl123/tracks" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if got := r.URL.Query().Get("market"); got != "US" {
			t.Errorf("unexpected market: %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("unexpected limit: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("offset") {
		case "0":
			_, _ = w.Write([]byte(`{"items":[{"track":{"id":"t1","name":"One","type":"track","artists":[{"name":"A"}],"available_markets":["US"]}},{"track":{"id":"t2","name":"Two","type":"track","artists":[{"name":"B"}],"available_markets":["US"]}}],"next":"more","total":3}`))
		case "2":
			_, _ = w.Write([]byte(`{"items":[{"track":{"id":"t3","name":"Three","type":"track","artists":[{"name":"C"}],"available_markets":["US"]}}],"next":"","total":3}`))
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	})
	client := newClient(t, server, "us")

	items, err := client.PlaylistTracks(context.Background(), "pl123")
	if err != nil {
		t.Fatalf("PlaylistTracks returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[2].Track == nil || items[2].Track.Name != "Three" {
		t.Fatalf("unexpected final item: %#v", items[2])
	}
	if *tokenCalls != 1 {
		t.Fatalf("expected 1 token grant, got %d", *tokenCalls)
	}
}

func TestPlaylistFetchesMetadata(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/pl123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pl123","name":"Workout Mix","tracks":{"total":42}}`))
	})
	client := newClient(t, server, "")

	playlist, err := client.Playlist(context.Background(), "pl123")
	if err != nil {
		t.Fatalf("Playlist returned error: %v", err)
	}
	if playlist.Name != "Workout Mix" || playlist.Tracks.Total != 42 {
		t.Fatalf("unexpected playlist: %#v", playlist)
	}
}

func TestAlbumTracks(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/albums/al1/tracks" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("unexpected limit: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"t1","name":"Intro","type":"track","artists":[{"name":"A"}],"available_markets":["US"]},{"id":"t2","name":"Outro","type":"track","artists":[{"name":"A"}],"available_markets":["US"]}],"next":"","total":2}`))
	})
	client := newClient(t, server, "")

	tracks, err := client.AlbumTracks(context.Background(), "al1")
	if err != nil {
		t.Fatalf("AlbumTracks returned error: %v", err)
	}
	if len(tracks) != 2 || tracks[1].Name != "Outro" {
		t.Fatalf("unexpected tracks: %#v", tracks)
	}
}

func TestTokenRefreshOnUnauthorized(t *testing.T) {
	apiCalls := 0
	server, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		if apiCalls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-2" {
			t.Errorf("expected refreshed token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"t1","name":"Song","type":"track","artists":[{"name":"A"}]}`))
	})
	client := newClient(t, server, "")

	if _, err := client.Track(context.Background(), "t1"); err != nil {
		t.Fatalf("Track returned error: %v", err)
	}
	if *tokenCalls != 2 {
		t.Fatalf("expected 2 token grants, got %d", *tokenCalls)
	}
}

func TestRetryAfterOnRateLimit(t *testing.T) {
	apiCalls := 0
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		if apiCalls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pl1","name":"Mix","tracks":{"total":2}}`))
	})
	client := newClient(t, server, "")

	playlist, err := client.Playlist(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("Playlist returned error: %v", err)
	}
	if playlist.Name != "Mix" {
		t.Fatalf("unexpected playlist: %#v", playlist)
	}
	if apiCalls != 2 {
		t.Fatalf("expected retry after 429, got %d calls", apiCalls)
	}
}

func TestNotFoundError(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	client := newClient(t, server, "")

	_, err := client.Playlist(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServerErrorIsTransient(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := newClient(t, server, "")

	_, err := client.Track(context.Background(), "t1")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestTrackAvailability(t *testing.T) {
	playable := true
	unplayable := false
	tests := []struct {
		name  string
		track spotify.Track
		want  bool
	}{
		{"markets listed", spotify.Track{AvailableMarkets: []string{"US"}}, true},
		{"no markets", spotify.Track{}, false},
		{"relinked playable", spotify.Track{IsPlayable: &playable}, true},
		{"relinked unplayable", spotify.Track{IsPlayable: &unplayable, AvailableMarkets: []string{"US"}}, false},
		{"local file", spotify.Track{IsLocal: true, AvailableMarkets: []string{"US"}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.track.Available(); got != tc.want {
				t.Fatalf("Available() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestArtistNames(t *testing.T) {
	track := spotify.Track{Artists: []spotify.Artist{{Name: "Daft Punk"}, {Name: "Pharrell Williams"}}}
	if got := track.ArtistNames(); got != "Daft Punk, Pharrell Williams" {
		t.Fatalf("unexpected artist names: %q", got)
	}
	if got := (spotify.Track{}).ArtistNames(); got != "" {
		t.Fatalf("expected empty artist names, got %q", got)
	}
}
