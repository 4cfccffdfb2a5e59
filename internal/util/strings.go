package util

import "strings"

// SafeTruncate safely truncates a string to maxLen bytes without panicking.
// Returns the original string if it's shorter than maxLen, otherwise returns
// the first maxLen bytes. Used when logging GitHub response bodies, where only
// a prefix should be shown.
//
// If maxLen is negative, it's treated as 0 and returns an empty string.
//
// Example:
//
//	SafeTruncate("very-long-body-abc123", 8) // Returns: "very-lon"
//	SafeTruncate("short", 10)                 // Returns: "short"
//	SafeTruncate("test", -1)                  // Returns: ""
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// WithTrailingSlash appends a single "/" to url when it doesn't already end
// with one. The empty string is returned unchanged so that callers can still
// distinguish an unset URL.
//
// Example:
//
//	WithTrailingSlash("https://github.com")  // Returns: "https://github.com/"
//	WithTrailingSlash("https://github.com/") // Returns: "https://github.com/"
//	WithTrailingSlash("")                    // Returns: ""
func WithTrailingSlash(url string) string {
	if url == "" || strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}

// SplitAndTrim splits a comma-separated value and trims surrounding
// whitespace from every entry. Empty entries are dropped, so "a, ,b" yields
// ["a", "b"] and "" yields an empty (non-nil) slice.
func SplitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
