package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cratedig/internal/services/ytdlp"
)

type stubExecutor struct {
	lines []string
	err   error
	calls int
	args  [][]string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	s.calls++
	cloned := append([]string(nil), args...)
	s.args = append(s.args, cloned)
	if onStdout != nil {
		for _, line := range s.lines {
			onStdout(line)
		}
	}
	return s.err
}

// fileCreatingExecutor simulates yt-dlp writing the final audio file. The
// --output template is the argument following "--output".
type fileCreatingExecutor struct {
	stubExecutor
	content []byte
}

func (f *fileCreatingExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	if err := f.stubExecutor.Run(ctx, binary, args, onStdout); err != nil {
		return err
	}
	for i, arg := range args {
		if arg == "--output" && i+1 < len(args) {
			path := strings.Replace(args[i+1], "%(ext)s", "mp3", 1)
			return os.WriteFile(path, f.content, 0o644)
		}
	}
	return nil
}

func TestSearchParsesCandidates(t *testing.T) {
	exec := &stubExecutor{lines: []string{
		`{"title":"Bohemian Rhapsody (Official Video)","duration":354.0,"webpage_url":"https://youtube.com/watch?v=abc","uploader":"Queen Official","view_count":123456}`,
		"not json",
		`{"title":"Bohemian Rhapsody Live","duration":390.5,"webpage_url":"https://youtube.com/watch?v=def","uploader":"Queen Official","view_count":99}`,
	}}
	client, err := ytdlp.New("yt-dlp", 5, "mp3", "320K", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	candidates, err := client.Search(context.Background(), `"Bohemian Rhapsody" "Queen" official audio`, 3)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Title != "Bohemian Rhapsody (Official Video)" {
		t.Fatalf("unexpected first title: %q", candidates[0].Title)
	}
	if candidates[0].DurationSeconds != 354.0 {
		t.Fatalf("unexpected duration: %v", candidates[0].DurationSeconds)
	}
	if candidates[1].URL != "https://youtube.com/watch?v=def" {
		t.Fatalf("unexpected url: %q", candidates[1].URL)
	}

	wantArgs := []string{
		"--dump-json",
		"--no-download",
		"--default-search", "ytsearch3:",
		"--quiet",
		`"Bohemian Rhapsody" "Queen" official audio`,
	}
	if len(exec.args) != 1 || !equalStrings(exec.args[0], wantArgs) {
		t.Fatalf("unexpected search args: got %v want %v", exec.args, wantArgs)
	}
}

func TestSearchDefaultsLimit(t *testing.T) {
	exec := &stubExecutor{}
	client, err := ytdlp.New("yt-dlp", 5, "mp3", "320K", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Search(context.Background(), "queen", 0); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	joined := strings.Join(exec.args[0], " ")
	if !strings.Contains(joined, "ytsearch5:") {
		t.Fatalf("expected default ytsearch5:, got %v", exec.args[0])
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	client, err := ytdlp.New("yt-dlp", 5, "mp3", "320K", ytdlp.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Search(context.Background(), "   ", 5); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchReturnsExecutorError(t *testing.T) {
	client, err := ytdlp.New("yt-dlp", 5, "mp3", "320K", ytdlp.WithExecutor(&stubExecutor{err: errors.New("boom")}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Search(context.Background(), "queen", 5); err == nil {
		t.Fatal("expected error from executor")
	}
}

func TestDownloadBuildsTemplateAndVerifiesOutput(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "Queen - Bohemian Rhapsody.mp3")
	exec := &fileCreatingExecutor{content: []byte("audio-bytes")}
	client, err := ytdlp.New("yt-dlp", 5, "mp3", "320K", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Download(context.Background(), "https://youtube.com/watch?v=abc", finalPath); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}

	wantArgs := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "320K",
		"--output", filepath.Join(dir, "Queen - Bohemian Rhapsody.%(ext)s"),
		"--quiet",
		"--no-warnings",
		"https://youtube.com/watch?v=abc",
		"--add-metadata",
		"--metadata-from-title", "%(artist)s - %(title)s",
	}
	if len(exec.args) != 1 || !equalStrings(exec.args[0], wantArgs) {
		t.Fatalf("unexpected download args:\ngot  %v\nwant %v", exec.args, wantArgs)
	}
}

func TestDownloadFailsWhenNoFileProduced(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "Artist - Song.mp3")
	client, err := ytdlp.New("yt-dlp", 5, "mp3", "320K", ytdlp.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.Download(context.Background(), "https://youtube.com/watch?v=abc", finalPath)
	if err == nil {
		t.Fatal("expected error when no output file exists")
	}
	if !strings.Contains(err.Error(), "no output") {
		t.Fatalf("expected 'no output' error, got: %v", err)
	}
}

func TestDownloadFailsOnEmptyFile(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "Artist - Song.mp3")
	exec := &fileCreatingExecutor{content: nil}
	client, err := ytdlp.New("yt-dlp", 5, "mp3", "320K", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Download(context.Background(), "https://youtube.com/watch?v=abc", finalPath); err == nil {
		t.Fatal("expected error for zero-byte output")
	}
}

func TestVersion(t *testing.T) {
	exec := &stubExecutor{lines: []string{"2025.06.09"}}
	client, err := ytdlp.New("yt-dlp", 5, "mp3", "320K", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	version, err := client.Version(context.Background())
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if version != "2025.06.09" {
		t.Fatalf("unexpected version: %q", version)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ytdlp.New("  ", 5, "mp3", "320K"); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
