package track

import (
	"time"

	"cratedig/internal/textutil"
)

// FingerprintMatch is an acoustic identification produced during
// verification. Ephemeral; it lives only on the DownloadResult it verified.
type FingerprintMatch struct {
	Title       string
	Artist      string
	Album       string
	Confidence  float64
	Source      string
	RecordingID string
}

// MatchesTrack reports whether the identification corresponds to the
// expected track. Title and artist are compared independently with token-set
// similarity and both must meet the threshold.
func (m FingerprintMatch) MatchesTrack(t Track, threshold float64) bool {
	titleSimilarity := textutil.TokenSetSimilarity(m.Title, t.Title)
	artistSimilarity := textutil.TokenSetSimilarity(m.Artist, t.Artist)
	return titleSimilarity >= threshold && artistSimilarity >= threshold
}

// DownloadResult captures the outcome of resolving one track. Status is the
// single source of truth; success is derived, never stored.
type DownloadResult struct {
	Track        Track
	Status       DownloadStatus
	FilePath     string
	ErrorMessage string
	Match        *FingerprintMatch
	SourceURL    string
	Elapsed      time.Duration
}

// IsSuccess reports whether the track resolved to a usable file.
func (r DownloadResult) IsSuccess() bool {
	return r.Status.Succeeded()
}

// NeedsVerification reports whether the result is eligible for the
// fingerprint stage: a fresh successful download with a file on disk.
func (r DownloadResult) NeedsVerification() bool {
	return r.Status == StatusSuccess && r.FilePath != ""
}
