package util

import (
	"path"
	"regexp"
	"strings"
)

var disallowed = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFileName strips the extension and collapses every run of
// characters the CDN rejects in public identifiers into a single
// underscore.
func SanitizeFileName(name string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	base = disallowed.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_.")

	if base == "" {
		return "image"
	}

	return base
}
