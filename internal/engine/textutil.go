package engine

import (
	"regexp"
	"strings"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ParseListField splits free-form operator input into tokens. Commas,
// spaces and newlines all separate; blanks are dropped.
func ParseListField(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		for _, tok := range strings.Fields(part) {
			if tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

// SafeFilename strips characters that are unsafe in filenames on common
// filesystems and caps the length. Falls back to "video" for empty results.
func SafeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if runes := []rune(out); len(runes) > 120 {
		out = strings.TrimSpace(string(runes[:120]))
	}
	if out == "" {
		return "video"
	}
	return out
}
