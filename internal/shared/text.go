package shared

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// CharCount returns the number of user-perceived characters (grapheme clusters) in s.
func CharCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// TruncateChars returns s cut to at most n grapheme clusters. Clusters are never split.
func TruncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}

	g := uniseg.NewGraphemes(s)
	count := 0
	end := 0
	for g.Next() {
		if count == n {
			return s[:end]
		}
		_, end = g.Positions()
		count++
	}
	return s
}

// IsBlank reports whether s has no content once surrounding whitespace is trimmed.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// DisplayName formats a platform identifier for display: "mastodon" -> "Mastodon", "x" -> "X".
func DisplayName(id string) string {
	if id == "" {
		return ""
	}
	r := []rune(id)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
