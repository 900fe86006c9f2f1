package track

import (
	"fmt"
	"strings"

	"cratedig/internal/textutil"
)

// Track is a canonical piece of music with a stable catalog identity.
type Track struct {
	Title          string
	Artist         string
	Album          string
	DurationMS     int
	ISRC           string
	ExternalID     string
	SourcePlaylist string
}

// DisplayName returns the "Artist - Title" form used in logs and reports.
func (t Track) DisplayName() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// FileName derives the filesystem-safe file name for the track, including
// the extension for the given audio format. An empty format defaults to mp3.
func (t Track) FileName(format string) string {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if ext == "" {
		ext = "mp3"
	}
	return textutil.SanitizeFileName(t.DisplayName()) + "." + ext
}

// DurationSeconds returns the catalog duration in whole seconds.
func (t Track) DurationSeconds() int {
	return t.DurationMS / 1000
}

// PlaylistInfo describes one extracted playlist. Descriptive only.
type PlaylistInfo struct {
	Name       string
	URL        string
	Platform   string
	TrackCount int
}

func (p PlaylistInfo) String() string {
	return fmt.Sprintf("%s (%d tracks)", p.Name, p.TrackCount)
}

// Candidate is one search-index result considered for download. The index
// returns candidates already ranked by relevance; the selector consumes them
// in order.
type Candidate struct {
	Title           string
	DurationSeconds float64
	URL             string
	Uploader        string
	ViewCount       int64
}
