// Package ytdlp mediates access to the yt-dlp CLI used for candidate search
// and audio download.
//
// It normalizes command invocation, parses --dump-json search output into
// candidates, verifies that downloads actually produced a non-empty file, and
// exposes a testable executor interface so the download pipeline can be
// exercised without network access.
//
// Prefer this package over ad-hoc exec.Command usage when interacting with
// yt-dlp so argument construction and timeout handling remain consistent.
package ytdlp
