package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cratedig/internal/logging"
	"cratedig/internal/services"
	"cratedig/internal/services/spotify"
	"cratedig/internal/track"
)

// Extractor resolves playlist sources into deduplicated track lists.
type Extractor struct {
	catalog spotify.Catalog
	delay   time.Duration
	logger  *slog.Logger
}

// NewExtractor builds an Extractor. delaySeconds paces consecutive sources
// as rate-limiting courtesy; zero disables the pause.
func NewExtractor(catalog spotify.Catalog, delaySeconds float64, logger *slog.Logger) (*Extractor, error) {
	if catalog == nil {
		return nil, errors.New("catalog required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	extractor := &Extractor{
		catalog: catalog,
		logger:  logging.NewComponentLogger(logger, "extractor"),
	}
	if delaySeconds > 0 {
		extractor.delay = time.Duration(delaySeconds * float64(time.Second))
	}
	return extractor, nil
}

// ExtractAll processes every source in order. A failing source is logged
// and skipped; only context cancellation aborts the batch. Tracks are
// deduplicated by catalog ID preserving first appearance.
func (e *Extractor) ExtractAll(ctx context.Context, sources []Source) ([]track.PlaylistInfo, []track.Track, error) {
	var playlists []track.PlaylistInfo
	var all []track.Track

	for i, source := range sources {
		if i > 0 && e.delay > 0 {
			if err := sleepContext(ctx, e.delay); err != nil {
				return playlists, dedupe(all), err
			}
		}
		e.logger.Info("processing source",
			logging.Args(
				logging.Int("index", i+1),
				logging.Int("total", len(sources)),
				logging.String("url", source.URL),
			)...)

		info, tracks, err := e.extract(ctx, source)
		if err != nil {
			if ctx.Err() != nil {
				return playlists, dedupe(all), ctx.Err()
			}
			logging.ErrorWithContext(e.logger, "source extraction failed; continuing", "extraction_failed",
				logging.String("url", source.URL),
				logging.Error(err),
				logging.String(logging.FieldImpact, "tracks from this source are missing from the session"),
			)
			continue
		}
		playlists = append(playlists, info)
		all = append(all, tracks...)
		e.logger.Info("source extracted",
			logging.Args(
				logging.String(logging.FieldPlaylist, info.Name),
				logging.Int("tracks", len(tracks)),
			)...)
	}

	unique := dedupe(all)
	e.logger.Info("extraction complete",
		logging.Args(
			logging.Int("playlists", len(playlists)),
			logging.Int("unique_tracks", len(unique)),
		)...)
	return playlists, unique, nil
}

func (e *Extractor) extract(ctx context.Context, source Source) (track.PlaylistInfo, []track.Track, error) {
	switch source.Kind {
	case KindPlaylist:
		return e.extractPlaylist(ctx, source)
	case KindAlbum:
		return e.extractAlbum(ctx, source)
	case KindTrack:
		return e.extractTrack(ctx, source)
	default:
		return track.PlaylistInfo{}, nil, fmt.Errorf("%w: unsupported source kind %q", services.ErrValidation, source.Kind)
	}
}

func (e *Extractor) extractPlaylist(ctx context.Context, source Source) (track.PlaylistInfo, []track.Track, error) {
	meta, err := e.catalog.Playlist(ctx, source.ID)
	if err != nil {
		return track.PlaylistInfo{}, nil, services.Wrap(classify(err), "extractor", "fetch playlist", source.ID, err)
	}
	items, err := e.catalog.PlaylistTracks(ctx, source.ID)
	if err != nil {
		return track.PlaylistInfo{}, nil, services.Wrap(classify(err), "extractor", "fetch playlist tracks", source.ID, err)
	}

	info := track.PlaylistInfo{
		Name:       meta.Name,
		URL:        source.URL,
		Platform:   "spotify",
		TrackCount: meta.Tracks.Total,
	}
	tracks := make([]track.Track, 0, len(items))
	for _, item := range items {
		if item.Track == nil || item.Track.Type != "track" {
			continue
		}
		if converted, ok := convert(*item.Track, meta.Name); ok {
			tracks = append(tracks, converted)
		}
	}
	return info, tracks, nil
}

func (e *Extractor) extractAlbum(ctx context.Context, source Source) (track.PlaylistInfo, []track.Track, error) {
	album, err := e.catalog.Album(ctx, source.ID)
	if err != nil {
		return track.PlaylistInfo{}, nil, services.Wrap(classify(err), "extractor", "fetch album", source.ID, err)
	}
	items, err := e.catalog.AlbumTracks(ctx, source.ID)
	if err != nil {
		return track.PlaylistInfo{}, nil, services.Wrap(classify(err), "extractor", "fetch album tracks", source.ID, err)
	}

	info := track.PlaylistInfo{
		Name:       album.Name,
		URL:        source.URL,
		Platform:   "spotify",
		TrackCount: album.TotalTracks,
	}
	tracks := make([]track.Track, 0, len(items))
	for _, item := range items {
		converted, ok := convert(item, album.Name)
		if !ok {
			continue
		}
		// Simplified album tracks carry no album object of their own.
		converted.Album = album.Name
		tracks = append(tracks, converted)
	}
	return info, tracks, nil
}

func (e *Extractor) extractTrack(ctx context.Context, source Source) (track.PlaylistInfo, []track.Track, error) {
	fetched, err := e.catalog.Track(ctx, source.ID)
	if err != nil {
		return track.PlaylistInfo{}, nil, services.Wrap(classify(err), "extractor", "fetch track", source.ID, err)
	}
	converted, ok := convert(*fetched, "")
	if !ok {
		return track.PlaylistInfo{}, nil, fmt.Errorf("%w: track %s is unavailable", services.ErrNotFound, source.ID)
	}
	info := track.PlaylistInfo{
		Name:       converted.DisplayName(),
		URL:        source.URL,
		Platform:   "spotify",
		TrackCount: 1,
	}
	return info, []track.Track{converted}, nil
}

// convert maps a catalog track onto the session model. Unavailable and
// artist-less entries are dropped, matching the reference extractor.
func convert(st spotify.Track, playlistName string) (track.Track, bool) {
	if st.ID == "" || !st.Available() {
		return track.Track{}, false
	}
	artist := st.ArtistNames()
	if artist == "" {
		return track.Track{}, false
	}
	return track.Track{
		Title:          st.Name,
		Artist:         artist,
		Album:          st.Album.Name,
		DurationMS:     st.DurationMS,
		ISRC:           st.ExternalIDs.ISRC,
		ExternalID:     st.ID,
		SourcePlaylist: playlistName,
	}, true
}

func dedupe(tracks []track.Track) []track.Track {
	seen := make(map[string]struct{}, len(tracks))
	unique := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if _, ok := seen[t.ExternalID]; ok {
			continue
		}
		seen[t.ExternalID] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}

// classify maps transport errors onto the session taxonomy, defaulting to
// transient so one bad source never reads as fatal.
func classify(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return services.ErrNotFound
	case errors.Is(err, services.ErrValidation):
		return services.ErrValidation
	default:
		return services.ErrTransient
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
