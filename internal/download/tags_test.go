package download_test

import (
	"context"
	"os"
	"testing"

	"github.com/bogem/id3v2"

	"cratedig/internal/track"
)

func TestResolveEmbedsTags(t *testing.T) {
	cfg := testConfig(t)
	cfg.Download.EmbedTags = true
	searcher := &scriptedSearcher{responses: []searchResponse{
		{candidates: []track.Candidate{goodCandidate("https://example.com/v1")}},
	}}

	result := newDownloader(t, cfg, searcher, &stubFetcher{}).Resolve(context.Background(), testTrack())
	if result.Status != track.StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.ErrorMessage)
	}

	tag, err := id3v2.Open(result.FilePath, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open tagged file: %v", err)
	}
	defer tag.Close()

	if tag.Title() != "Song" {
		t.Errorf("expected title %q, got %q", "Song", tag.Title())
	}
	if tag.Artist() != "Band" {
		t.Errorf("expected artist %q, got %q", "Band", tag.Artist())
	}
	if tag.Album() != "Album" {
		t.Errorf("expected album %q, got %q", "Album", tag.Album())
	}

	var sourceComment string
	for _, frame := range tag.GetFrames(tag.CommonID("Comments")) {
		if comment, ok := frame.(id3v2.CommentFrame); ok {
			sourceComment = comment.Text
		}
	}
	if sourceComment != "https://example.com/v1" {
		t.Errorf("expected source comment, got %q", sourceComment)
	}
}

func TestResolveTagFailureKeepsDownload(t *testing.T) {
	cfg := testConfig(t)
	cfg.Download.EmbedTags = true
	searcher := &scriptedSearcher{responses: []searchResponse{
		{candidates: []track.Candidate{goodCandidate("https://example.com/v1")}},
	}}
	// An ID3 header with a malformed synchsafe size makes the tag pass
	// fail while the download itself completed.
	fetcher := &stubFetcher{content: []byte("ID3\x04\x00\x00\xff\xff\xff\xffrest of file")}

	result := newDownloader(t, cfg, searcher, fetcher).Resolve(context.Background(), testTrack())
	if result.Status != track.StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.ErrorMessage)
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("expected downloaded file kept: %v", err)
	}
}
