package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

// yearSuffixPattern matches year qualifiers such as " (2019)" that Sonarr
// appends to disambiguate remakes.
var yearSuffixPattern = regexp.MustCompile(` \(\d{4}\)`)

// ASCII transliterates text to its closest ASCII representation.
func ASCII(text string) string {
	return unidecode.Unidecode(text)
}

// StripYearSuffix removes " (YYYY)" qualifiers from a title.
func StripYearSuffix(title string) string {
	return yearSuffixPattern.ReplaceAllString(title, "")
}

// DisplayTitle returns the form shown to users for an owned title: ASCII,
// without year qualifiers, trimmed.
func DisplayTitle(title string) string {
	return strings.TrimSpace(StripYearSuffix(ASCII(title)))
}

// NormalizeKey builds the dedup key for a title. Two titles that differ only
// by case, accents, punctuation, whitespace, or a trailing year qualifier
// share the same key.
func NormalizeKey(title string) string {
	folded := strings.ToLower(StripYearSuffix(ASCII(title)))
	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}
