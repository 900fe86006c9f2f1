package playlist

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"cratedig/internal/logging"
)

// SourceKind identifies which catalog object a source line refers to.
type SourceKind string

const (
	KindPlaylist SourceKind = "playlist"
	KindAlbum    SourceKind = "album"
	KindTrack    SourceKind = "track"
)

// Source is one recognized reference from the sources file.
type Source struct {
	Kind SourceKind
	ID   string
	URL  string
	Line int
}

// sourcePatterns capture the catalog ID from both open.spotify.com URLs and
// spotify: URIs. Order matters: the first matching kind wins.
var sourcePatterns = []struct {
	kind    SourceKind
	pattern *regexp.Regexp
}{
	{KindPlaylist, regexp.MustCompile(`playlist[/:]([A-Za-z0-9]+)`)},
	{KindAlbum, regexp.MustCompile(`album[/:]([A-Za-z0-9]+)`)},
	{KindTrack, regexp.MustCompile(`track[/:]([A-Za-z0-9]+)`)},
}

// ParseSource recognizes a single Spotify reference. Returns false for
// anything that is not a Spotify playlist, album, or track link.
func ParseSource(line string) (Source, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Source{}, false
	}
	if !strings.Contains(trimmed, "spotify.com/") && !strings.HasPrefix(trimmed, "spotify:") {
		return Source{}, false
	}
	for _, candidate := range sourcePatterns {
		if match := candidate.pattern.FindStringSubmatch(trimmed); match != nil {
			return Source{Kind: candidate.kind, ID: match[1], URL: trimmed}, true
		}
	}
	return Source{}, false
}

// ReadSources loads the sources file. Blank lines and # comments are
// ignored; unrecognized lines are logged as warnings and skipped rather
// than failing the run.
func ReadSources(path string, logger *slog.Logger) ([]Source, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	var sources []Source
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		source, ok := ParseSource(line)
		if !ok {
			logging.WarnWithContext(logger, "unrecognized source line skipped", "invalid_source_line",
				logging.Int("line", lineNum),
				logging.String("text", line),
				logging.String(logging.FieldErrorHint, "expected a Spotify playlist, album, or track link"),
			)
			continue
		}
		source.Line = lineNum
		sources = append(sources, source)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	logger.Info("sources loaded",
		logging.Args(
			logging.String("path", path),
			logging.Int("count", len(sources)),
		)...)
	return sources, nil
}
