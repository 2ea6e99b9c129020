package textutil

import (
	"regexp"
	"strings"
)

var (
	boldPattern       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern     = regexp.MustCompile(`\*(.+?)\*`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// FlattenMarkdown strips inline bold/italic emphasis markers and collapses
// all whitespace runs (including newlines) into single spaces. Dialogue text
// is flattened this way before it is handed to speech synthesis so emphasis
// markers are never read aloud.
func FlattenMarkdown(text string) string {
	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "\n", " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CollapseWhitespace reduces whitespace runs to single spaces and trims the
// result.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// Ellipsize shortens text to at most max runes, appending "..." when the text
// was cut. Values of max below 4 return the text unchanged.
func Ellipsize(text string, max int) string {
	if max < 4 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}
