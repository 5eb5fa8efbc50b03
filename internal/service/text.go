package service

import "strings"

// truncate caps s at max characters, replacing the last one with an ellipsis
// when it overflows. Rune-based so multibyte text never splits mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(runes[:max-1]) + "…"
}

// collapseWhitespace flattens runs of whitespace (including newlines) into
// single spaces and trims the result.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
