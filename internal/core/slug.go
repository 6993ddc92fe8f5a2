// internal/core/slug.go
package core

import (
	"regexp"
	"strings"
)

// Slugs are immutable once assigned, so the format check only guards creation.
var slugValidationRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// IsValidSlug checks if a string is a valid URL slug (lowercase kebab-case).
func IsValidSlug(slug string) bool {
	return slugValidationRegex.MatchString(slug) && len(slug) <= 64
}

// Slugify converts an arbitrary name into a URL-safe kebab-case slug.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 64 {
		s = strings.Trim(s[:64], "-")
	}
	return s
}
