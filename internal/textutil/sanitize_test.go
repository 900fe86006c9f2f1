package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain name unchanged", input: "Shape of You", want: "Shape of You"},
		{name: "reserved characters removed", input: `CON:/\*?`, want: "CON"},
		{name: "angle brackets and pipes removed", input: "<Song> | Title", want: "Song Title"},
		{name: "quotes removed", input: `She Said "Yes"`, want: "She Said Yes"},
		{name: "trailing dots trimmed", input: "Song...", want: "Song"},
		{name: "leading and trailing spaces trimmed", input: "  Song  ", want: "Song"},
		{name: "interior whitespace collapsed", input: "Song\t\tTitle  Here", want: "Song Title Here"},
		{name: "control characters removed", input: "Song\x00\x1fTitle", want: "SongTitle"},
		{name: "empty input", input: "", want: "untitled"},
		{name: "only reserved characters", input: `\/:*?"<>|`, want: "untitled"},
		{name: "only dots and spaces", input: " .. . ", want: "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := SanitizeFileName(long)
	if len([]rune(got)) != maxFileNameRunes {
		t.Errorf("length = %d, want %d", len([]rune(got)), maxFileNameRunes)
	}

	// A dot landing on the cut point must not survive as a trailing dot.
	dotted := strings.Repeat("a", maxFileNameRunes-1) + "." + strings.Repeat("b", 100)
	got = SanitizeFileName(dotted)
	if strings.HasSuffix(got, ".") {
		t.Errorf("truncated name %q retains trailing dot", got)
	}
}

func TestSanitizeFileNameNoForbiddenRunes(t *testing.T) {
	got := SanitizeFileName(`AC/DC: Back in Black <2003 Remaster>?!`)
	for _, r := range `<>:"/\|?*` {
		if strings.ContainsRune(got, r) {
			t.Fatalf("sanitized name %q contains forbidden rune %q", got, r)
		}
	}
}
