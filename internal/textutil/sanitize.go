package textutil

import "strings"

// Slug derives the Sonarr title slug: lower case with spaces as hyphens.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// FolderName returns the series folder Sonarr would create under the root
// path. Slashes cannot appear in a single path segment.
func FolderName(name string) string {
	return strings.ReplaceAll(name, "/", " ")
}
