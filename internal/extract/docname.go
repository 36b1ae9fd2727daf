package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

// UnknownArtist is the terminal fallback when nothing usable can be derived
// from the filename.
const UnknownArtist = "Unknown Artist"

var (
	reTimestampPrefix = regexp.MustCompile(`^\d{8}_\d{6}_`)
	reSpaces          = regexp.MustCompile(`\s+`)
)

// ArtistNameFromFilename derives an artist name from an uploaded filename.
// The result is never empty: extension and timestamp prefix are stripped,
// separators become spaces, the remainder is title-cased, and anything
// shorter than two characters falls back to UnknownArtist.
func ArtistNameFromFilename(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name = reTimestampPrefix.ReplaceAllString(name, "")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = titleCase(name)
	name = strings.TrimSpace(reSpaces.ReplaceAllString(name, " "))
	if len(name) < 2 {
		return UnknownArtist
	}
	return name
}

// titleCase uppercases the first letter of each space-separated word and
// lowercases the rest, matching the original naming rule.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
