package validate

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxTitleLength is the maximum todo title length after trimming, in characters.
	MaxTitleLength = 200
	// MaxDescriptionLength is the maximum todo description length after trimming, in characters.
	MaxDescriptionLength = 1000
)

// Title trims the title and validates it: non-empty after trimming, at most
// 200 characters, and free of '<' and '>'. Returns the trimmed value and an
// error message suitable for a field-level response, or "" when valid.
func Title(title string) (string, string) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", "title cannot be empty or just whitespace"
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return "", "title must be at most 200 characters"
	}
	if strings.ContainsAny(trimmed, "<>") {
		return "", "title cannot contain HTML tags"
	}
	return trimmed, ""
}

// Description trims the description and validates it. An all-whitespace
// description normalizes to nil (absent). Occurrences of an opening or
// closing script tag, case-insensitively, are rejected.
func Description(description string) (*string, string) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return nil, ""
	}
	if utf8.RuneCountInString(trimmed) > MaxDescriptionLength {
		return nil, "description must be at most 1000 characters"
	}
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "<script") || strings.Contains(lower, "</script>") {
		return nil, "description cannot contain script tags"
	}
	return &trimmed, ""
}
