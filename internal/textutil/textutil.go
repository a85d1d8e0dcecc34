package textutil

import "strings"

// NormalizeNewlines converts CRLF and bare CR line endings to LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// EscapeInline encodes real newlines as the literal two-character sequence
// `\n` so multi-line values fit the one-line-per-field text format.
func EscapeInline(s string) string {
	return strings.ReplaceAll(NormalizeNewlines(s), "\n", `\n`)
}

// UnescapeInline reverses EscapeInline.
func UnescapeInline(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// Truncate shortens a string to maxLen bytes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
