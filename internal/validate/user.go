package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Loose syntactic check; the mail server is the real authority.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Username trims and validates a registration username: 3-50 characters,
// letters, digits and underscore only.
func Username(username string) (string, string) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "", "username cannot be empty"
	}
	if utf8.RuneCountInString(trimmed) < 3 {
		return "", "username must be at least 3 characters long"
	}
	if utf8.RuneCountInString(trimmed) > 50 {
		return "", "username must be less than 50 characters"
	}
	if !usernameRe.MatchString(trimmed) {
		return "", "username can only contain letters, numbers and underscore"
	}
	return trimmed, ""
}

// Email validates the email address syntax.
func Email(email string) (string, string) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", "email cannot be empty"
	}
	if !emailRe.MatchString(trimmed) {
		return "", "email is not a valid address"
	}
	return trimmed, ""
}

// Password validates a registration password: 6-100 characters.
func Password(password string) string {
	if utf8.RuneCountInString(password) < 6 {
		return "password must be at least 6 characters long"
	}
	if utf8.RuneCountInString(password) > 100 {
		return "password is too long"
	}
	return ""
}
