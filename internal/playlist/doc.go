// Package playlist reads the sources file and resolves each recognized
// Spotify reference into catalog tracks. One failing source never aborts
// the batch; the extractor logs, skips, and keeps going. Tracks are
// deduplicated by catalog ID across all sources, first appearance wins.
package playlist
