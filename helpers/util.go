package helpers

import (
	"strings"
)

// LastSlugPart returns the final hyphen-separated token of a URL path slug,
// e.g. ".../products/signature-iron-free-khakis-a31590022" -> "a31590022".
func LastSlugPart(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	slash := strings.LastIndex(trimmed, "/")
	if slash >= 0 {
		trimmed = trimmed[slash+1:]
	}
	hyphen := strings.LastIndex(trimmed, "-")
	if hyphen < 0 || hyphen == len(trimmed)-1 {
		return ""
	}
	return trimmed[hyphen+1:]
}
