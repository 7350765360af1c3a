package core

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9_]`)
)

// Slugify turns arbitrary text into an identifier of lowercase letters,
// digits and underscores. An empty result becomes "table".
//
// Slugify is idempotent: Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	if slug := slug(s); slug != "" {
		return slug
	}
	return "table"
}

// SlugifyColumn is Slugify for a column at 1-based position pos; an empty
// result becomes col_<pos>.
func SlugifyColumn(s string, pos int) string {
	if slug := slug(s); slug != "" {
		return slug
	}
	return "col_" + strconv.Itoa(pos)
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, "_")
	return nonSlugChars.ReplaceAllString(s, "")
}
