// Package normalize provides utilities for normalizing user-supplied content.
package normalize

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
// Looks for opening tags like <p>, <br>, <div>, <b>, etc.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// containsHTML checks if a string appears to contain HTML markup.
// Returns true if common HTML tags are detected.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Notes normalizes entry notes for storage. Pasted rich-text content
// arrives as HTML; it's converted to Markdown so a single plain format
// reaches every renderer. Plain text passes through unchanged.
func Notes(s string) string {
	if s == "" || !containsHTML(s) {
		return strings.TrimSpace(s)
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		// If conversion fails, keep the original string
		return strings.TrimSpace(s)
	}

	return strings.TrimSpace(markdown)
}

// hexColorPattern matches #RGB and #RRGGBB color values.
var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color canonicalizes an entry color label. Hex values are lowercased;
// named colors are trimmed and lowercased. Returns false if a hex-like
// value doesn't parse.
func Color(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if strings.HasPrefix(s, "#") {
		if !hexColorPattern.MatchString(s) {
			return "", false
		}
		return strings.ToLower(s), true
	}
	return strings.ToLower(s), true
}

// Category trims and lowercases a category label so filters match
// regardless of how the label was typed.
func Category(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
