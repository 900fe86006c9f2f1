package textutil

import (
	"strings"
	"unicode"
)

// reservedReplacer removes characters rejected by at least one supported
// filesystem.
var reservedReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
)

// maxFileNameRunes bounds a sanitized name before any extension is appended.
const maxFileNameRunes = 150

// SanitizeFileName converts free-form metadata text into a safe file name
// component. Reserved and control characters are removed, interior whitespace
// collapses to single spaces, leading/trailing dots and spaces are trimmed,
// and the result is capped at 150 runes. Returns "untitled" when nothing
// survives cleaning.
func SanitizeFileName(name string) string {
	cleaned := reservedReplacer.Replace(name)
	var b strings.Builder
	b.Grow(len(cleaned))
	for _, r := range cleaned {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	cleaned = strings.Join(strings.Fields(b.String()), " ")
	cleaned = strings.Trim(cleaned, ". ")
	if runes := []rune(cleaned); len(runes) > maxFileNameRunes {
		cleaned = strings.Trim(string(runes[:maxFileNameRunes]), ". ")
	}
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}
