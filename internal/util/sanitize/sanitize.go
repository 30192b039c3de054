// Package sanitize cleans text received from the directory API or typed by
// the user before it is drawn on the terminal.
//
// It removes:
//   - invisible Unicode characters (zero-width spaces, BOM, etc.)
//   - control characters, including ESC, so API data cannot inject terminal
//     escape sequences
//   - line breaks and runs of whitespace, which would break table rows
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Field sanitizes a single-line display value.
func Field(s string) string {
	if s == "" {
		return s
	}

	s = removeInvisibleChars(s)
	s = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Input sanitizes a line typed at an interactive prompt. Interior whitespace
// is kept as typed apart from invisible and control characters.
func Input(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = removeInvisibleChars(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// removeInvisibleChars removes zero-width and other invisible Unicode characters
func removeInvisibleChars(s string) string {
	invisibleChars := []string{
		"\u200B", // Zero-width space
		"\u200C", // Zero-width non-joiner
		"\u200D", // Zero-width joiner
		"\uFEFF", // Zero-width no-break space (BOM)
		"\u00AD", // Soft hyphen
		"\u2060", // Word joiner
		"\u180E", // Mongolian vowel separator
	}

	for _, char := range invisibleChars {
		s = strings.ReplaceAll(s, char, "")
	}

	return s
}
