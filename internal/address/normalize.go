package address

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lowercases s and strips diacritics so table lookups are
// accent-insensitive ("Polynésie" matches "polynesie").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// collapse replaces every run of non-alphanumeric runes with a single space
// and trims the result, so phrase lookups survive punctuation.
func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
		} else if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenize splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsPhrase reports whether the space-collapsed text contains phrase as
// a whole-word sequence.
func containsPhrase(padded, phrase string) bool {
	return strings.Contains(padded, " "+phrase+" ")
}

// pad wraps a collapsed string in single spaces so whole-word containment
// checks work at both ends.
func pad(s string) string {
	return " " + s + " "
}
