package search

import (
	"fmt"
	"regexp"
	"strings"

	"cratedig/internal/track"
)

// maxQueries bounds external search volume per track.
const maxQueries = 3

// noisePatterns match qualifiers that hurt search relevance more than they
// help: featured-artist credits, remix/remaster/live/acoustic tags, any
// bracketed block, and "(... version ...)" blocks.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(feat\..*?\)`),
	regexp.MustCompile(`(?i)\(ft\..*?\)`),
	regexp.MustCompile(`(?i)\(featuring.*?\)`),
	regexp.MustCompile(`(?i)\(remix\)`),
	regexp.MustCompile(`(?i)\(remaster\)`),
	regexp.MustCompile(`(?i)\(live\)`),
	regexp.MustCompile(`(?i)\(acoustic\)`),
	regexp.MustCompile(`(?i)\[.*?\]`),
	regexp.MustCompile(`(?i)\(.*?version.*?\)`),
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// Queries builds the ranked search queries for a track, most specific
// first, capped at maxQueries. The result is never empty and no query is
// blank: when cleanup strips a field to nothing the original text is used
// instead.
func Queries(t track.Track) []string {
	title := cleanText(t.Title)
	if title == "" {
		title = strings.TrimSpace(t.Title)
	}
	artist := cleanText(t.Artist)
	if artist == "" {
		artist = strings.TrimSpace(t.Artist)
	}

	queries := []string{
		fmt.Sprintf(`"%s" "%s" official audio`, title, artist),
		fmt.Sprintf(`"%s" "%s" lyrics`, title, artist),
		fmt.Sprintf(`"%s" "%s" official music video`, title, artist),
		fmt.Sprintf("%s %s official", artist, title),
		fmt.Sprintf("%s %s", artist, title),
		fmt.Sprintf("%s %s", title, artist),
		fmt.Sprintf("%s by %s", title, artist),
	}
	return queries[:maxQueries]
}

// cleanText strips noise qualifiers and collapses whitespace.
func cleanText(text string) string {
	cleaned := text
	for _, pattern := range noisePatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
