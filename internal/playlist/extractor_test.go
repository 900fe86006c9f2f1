package playlist_test

import (
	"context"
	"errors"
	"testing"

	"cratedig/internal/playlist"
	"cratedig/internal/services/spotify"
)

type stubCatalog struct {
	playlists     map[string]*spotify.Playlist
	playlistItems map[string][]spotify.PlaylistItem
	albums        map[string]*spotify.Album
	albumItems    map[string][]spotify.Track
	trackByID     map[string]*spotify.Track
}

func (s *stubCatalog) Playlist(ctx context.Context, id string) (*spotify.Playlist, error) {
	if p, ok := s.playlists[id]; ok {
		return p, nil
	}
	return nil, errors.New("playlist lookup failed")
}

func (s *stubCatalog) PlaylistTracks(ctx context.Context, id string) ([]spotify.PlaylistItem, error) {
	if items, ok := s.playlistItems[id]; ok {
		return items, nil
	}
	return nil, errors.New("playlist tracks lookup failed")
}

func (s *stubCatalog) Album(ctx context.Context, id string) (*spotify.Album, error) {
	if a, ok := s.albums[id]; ok {
		return a, nil
	}
	return nil, errors.New("album lookup failed")
}

func (s *stubCatalog) AlbumTracks(ctx context.Context, id string) ([]spotify.Track, error) {
	if items, ok := s.albumItems[id]; ok {
		return items, nil
	}
	return nil, errors.New("album tracks lookup failed")
}

func (s *stubCatalog) Track(ctx context.Context, id string) (*spotify.Track, error) {
	if tr, ok := s.trackByID[id]; ok {
		return tr, nil
	}
	return nil, errors.New("track lookup failed")
}

func catalogTrack(id, title string, artists ...string) spotify.Track {
	named := make([]spotify.Artist, 0, len(artists))
	for _, artist := range artists {
		named = append(named, spotify.Artist{Name: artist})
	}
	return spotify.Track{
		ID:               id,
		Name:             title,
		Type:             "track",
		DurationMS:       200000,
		Artists:          named,
		Album:            spotify.Album{Name: "Test Album"},
		ExternalIDs:      spotify.ExternalIDs{ISRC: "USTEST" + id},
		AvailableMarkets: []string{"US"},
	}
}

func items(tracks ...spotify.Track) []spotify.PlaylistItem {
	wrapped := make([]spotify.PlaylistItem, 0, len(tracks))
	for i := range tracks {
		wrapped = append(wrapped, spotify.PlaylistItem{Track: &tracks[i]})
	}
	return wrapped
}

func TestExtractAllDedupesAcrossSources(t *testing.T) {
	shared := catalogTrack("t1", "Shared Song", "Artist A")
	catalog := &stubCatalog{
		playlists: map[string]*spotify.Playlist{
			"p1": {ID: "p1", Name: "First"},
			"p2": {ID: "p2", Name: "Second"},
		},
		playlistItems: map[string][]spotify.PlaylistItem{
			"p1": items(shared, catalogTrack("t2", "Only In First", "Artist B")),
			"p2": items(shared, catalogTrack("t3", "Only In Second", "Artist C")),
		},
	}
	extractor, err := playlist.NewExtractor(catalog, 0, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	sources := []playlist.Source{
		{Kind: playlist.KindPlaylist, ID: "p1", URL: "https://open.spotify.com/playlist/p1"},
		{Kind: playlist.KindPlaylist, ID: "p2", URL: "https://open.spotify.com/playlist/p2"},
	}
	playlists, tracks, err := extractor.ExtractAll(context.Background(), sources)
	if err != nil {
		t.Fatalf("ExtractAll returned error: %v", err)
	}
	if len(playlists) != 2 {
		t.Fatalf("expected 2 playlists, got %d", len(playlists))
	}
	if len(tracks) != 3 {
		t.Fatalf("expected 3 unique tracks, got %d", len(tracks))
	}
	if tracks[0].ExternalID != "t1" || tracks[1].ExternalID != "t2" || tracks[2].ExternalID != "t3" {
		t.Fatalf("unexpected order: %#v", tracks)
	}
	if tracks[0].SourcePlaylist != "First" {
		t.Fatalf("expected first-seen playlist attribution, got %q", tracks[0].SourcePlaylist)
	}
}

func TestExtractAllSkipsFailingSource(t *testing.T) {
	catalog := &stubCatalog{
		playlists: map[string]*spotify.Playlist{
			"good": {ID: "good", Name: "Good"},
		},
		playlistItems: map[string][]spotify.PlaylistItem{
			"good": items(catalogTrack("t1", "Song", "Artist")),
		},
	}
	extractor, err := playlist.NewExtractor(catalog, 0, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	sources := []playlist.Source{
		{Kind: playlist.KindPlaylist, ID: "missing", URL: "https://open.spotify.com/playlist/missing"},
		{Kind: playlist.KindPlaylist, ID: "good", URL: "https://open.spotify.com/playlist/good"},
	}
	playlists, tracks, err := extractor.ExtractAll(context.Background(), sources)
	if err != nil {
		t.Fatalf("ExtractAll returned error: %v", err)
	}
	if len(playlists) != 1 || playlists[0].Name != "Good" {
		t.Fatalf("unexpected playlists: %#v", playlists)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
}

func TestExtractPlaylistSkipsUnusableEntries(t *testing.T) {
	unavailable := catalogTrack("t2", "Region Locked", "Artist")
	unavailable.AvailableMarkets = nil
	artistless := catalogTrack("t3", "No Artist")
	episode := catalogTrack("t4", "Podcast Episode", "Host")
	episode.Type = "episode"

	entries := items(catalogTrack("t1", "Keeper", "Artist A", "Artist B"), unavailable, artistless, episode)
	entries = append(entries, spotify.PlaylistItem{Track: nil})

	catalog := &stubCatalog{
		playlists:     map[string]*spotify.Playlist{"p1": {ID: "p1", Name: "Mix"}},
		playlistItems: map[string][]spotify.PlaylistItem{"p1": entries},
	}
	extractor, err := playlist.NewExtractor(catalog, 0, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	_, tracks, err := extractor.ExtractAll(context.Background(), []playlist.Source{
		{Kind: playlist.KindPlaylist, ID: "p1", URL: "url"},
	})
	if err != nil {
		t.Fatalf("ExtractAll returned error: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 usable track, got %d: %#v", len(tracks), tracks)
	}
	if tracks[0].Artist != "Artist A, Artist B" {
		t.Fatalf("expected joined artists, got %q", tracks[0].Artist)
	}
	if tracks[0].ISRC != "USTESTt1" {
		t.Fatalf("expected ISRC carried over, got %q", tracks[0].ISRC)
	}
}

func TestExtractAlbum(t *testing.T) {
	simplified := catalogTrack("t1", "Album Cut", "Artist")
	simplified.Album = spotify.Album{}
	simplified.ExternalIDs = spotify.ExternalIDs{}

	catalog := &stubCatalog{
		albums:     map[string]*spotify.Album{"al1": {ID: "al1", Name: "The Record", TotalTracks: 1}},
		albumItems: map[string][]spotify.Track{"al1": {simplified}},
	}
	extractor, err := playlist.NewExtractor(catalog, 0, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	playlists, tracks, err := extractor.ExtractAll(context.Background(), []playlist.Source{
		{Kind: playlist.KindAlbum, ID: "al1", URL: "https://open.spotify.com/album/al1"},
	})
	if err != nil {
		t.Fatalf("ExtractAll returned error: %v", err)
	}
	if len(playlists) != 1 || playlists[0].Name != "The Record" || playlists[0].TrackCount != 1 {
		t.Fatalf("unexpected playlists: %#v", playlists)
	}
	if len(tracks) != 1 || tracks[0].Album != "The Record" || tracks[0].SourcePlaylist != "The Record" {
		t.Fatalf("unexpected tracks: %#v", tracks)
	}
}

func TestExtractSingleTrack(t *testing.T) {
	single := catalogTrack("t9", "One Off", "Artist")
	catalog := &stubCatalog{trackByID: map[string]*spotify.Track{"t9": &single}}
	extractor, err := playlist.NewExtractor(catalog, 0, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	playlists, tracks, err := extractor.ExtractAll(context.Background(), []playlist.Source{
		{Kind: playlist.KindTrack, ID: "t9", URL: "https://open.spotify.com/track/t9"},
	})
	if err != nil {
		t.Fatalf("ExtractAll returned error: %v", err)
	}
	if len(playlists) != 1 || playlists[0].TrackCount != 1 || playlists[0].Name != "Artist - One Off" {
		t.Fatalf("unexpected playlists: %#v", playlists)
	}
	if len(tracks) != 1 || tracks[0].SourcePlaylist != "" {
		t.Fatalf("unexpected tracks: %#v", tracks)
	}
}

func TestExtractAllCancellation(t *testing.T) {
	catalog := &stubCatalog{
		playlists: map[string]*spotify.Playlist{
			"p1": {ID: "p1", Name: "First"},
		},
		playlistItems: map[string][]spotify.PlaylistItem{
			"p1": items(catalogTrack("t1", "Song", "Artist")),
		},
	}
	extractor, err := playlist.NewExtractor(catalog, 30, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sources := []playlist.Source{
		{Kind: playlist.KindPlaylist, ID: "p1", URL: "u1"},
		{Kind: playlist.KindPlaylist, ID: "p1", URL: "u2"},
	}
	if _, _, err := extractor.ExtractAll(ctx, sources); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
