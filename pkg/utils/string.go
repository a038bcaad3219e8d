package utils

import "strings"

// NormalizeWhitespace replaces runs of whitespace with a single space and
// trims the ends.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString truncates a string to at most maxLength runes, appending an
// ellipsis when something was cut.
func TruncateString(str string, maxLength int) string {
	runes := []rune(str)
	if len(runes) <= maxLength {
		return str
	}

	return string(runes[:maxLength]) + "..."
}
