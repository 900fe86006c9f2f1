// Package download resolves individual tracks to local audio files.
//
// The orchestrator walks the generated queries in order, searching the
// external index, filtering candidates, and driving yt-dlp until one query
// produces a non-empty file at the canonical path. A file already present
// short-circuits the whole attempt so re-running a session never
// re-downloads. Failures are returned as values on the DownloadResult;
// nothing in this package aborts a session.
package download
