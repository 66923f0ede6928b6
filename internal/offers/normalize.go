package offers

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NFD leaves stroked letters intact, so Polish ł needs an explicit mapping.
var strokedLetters = strings.NewReplacer("ł", "l", "Ł", "L")

// CleanText trims the input, converts non-breaking spaces to regular spaces
// and collapses whitespace runs to a single space. Listing pages pad fields
// with layout whitespace liberally.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, " ", " ")
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Fold normalizes text for identity comparison: cleaned, diacritics stripped
// (NFD, combining marks removed) and lowercased. "Kraków" and "krakow"
// fold to the same value.
func Fold(s string) string {
	s = CleanText(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strokedLetters.Replace(s))
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
