package http

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxSlugLength    = 64
	MaxContactLength = 32
	MaxCredential    = 256
)

var (
	slugPattern    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	contactPattern = regexp.MustCompile(`^-?[0-9]+$`)
)

// ValidSlug checks if a slug is safe (alphanumeric + underscore + hyphen)
func ValidSlug(s string) bool {
	return s != "" && len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

// ValidContact accepts normalized phone numbers and Telegram chat ids
func ValidContact(s string) bool {
	return s != "" && len(s) <= MaxContactLength && contactPattern.MatchString(s)
}

// SanitizeString removes null bytes and invalid UTF-8
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return s
}
