// Package track defines the value types flowing through a download session:
// tracks and playlists pulled from the catalog, candidates returned by the
// search index, per-track download results with their status progression, and
// aggregate session statistics.
//
// Tracks are immutable once constructed; identity is the catalog ID and is
// used for deduplication across playlists. DownloadStatus advances one way
// per session, and SessionStats derives its rates on read so counters remain
// the single source of truth.
package track
