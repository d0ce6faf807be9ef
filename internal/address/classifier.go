// Package address classifies free-text addresses as French or foreign with
// a precision-first rule engine: a foreign address mistaken for French would
// corrupt the geographic relation classes, while a French address mistaken
// for foreign only lands in the foreign bucket.
package address

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Classification results.
const (
	France  = "FRANCE"
	Foreign = "FOREIGN"
)

var (
	reOverseasPostal = regexp.MustCompile(`\b9[78]\d{3}\b`)
	reFiveDigits     = regexp.MustCompile(`\b\d{5}\b`)
	reCanadianPostal = regexp.MustCompile(`\b[A-Z]\d[A-Z] ?\d[A-Z]\d\b`)
)

// Context window scanned around an ambiguous postal code, in bytes.
const postalContextWindow = 30

// Scoring weights for the French-signal pass.
const (
	weightStreetType = 4 // FANTOIR vocabulary, counted once
	weightPostalCode = 3
	weightCue        = 2 // per French-language cue, accented characters included
	weightPlace      = 1 // per place or department name
)

// Classify maps a free-text address to France or Foreign. It never fails:
// blank input and internal panics both resolve to France; text no rule can
// claim resolves to Foreign.
//
// Addresses carrying coordinates should bypass this function entirely: the
// BAN geocoder refuses foreign addresses, so a geocoded address is French by
// construction. That bypass lives in the pair classifier.
func Classify(text string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("address: classifier panic, defaulting to France",
				zap.Any("cause", r))
			result = France
		}
	}()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return France
	}

	folded := fold(trimmed)
	switch folded {
	case "nan", "null", "none":
		return France
	}

	collapsed := collapse(folded)
	padded := pad(collapsed)
	tokens := tokenize(collapsed)

	// Explicit foreign names, unless a French idiom vetoes the match.
	if !frenchIdioms.match(padded, tokens) && isForeignName(padded, tokens) {
		return Foreign
	}

	// Overseas postal prefix or territory name.
	if reOverseasPostal.MatchString(padded) {
		return France
	}
	if overseasNames.match(padded, tokens) {
		return France
	}

	if frenchScore(trimmed, padded, tokens) > 0 {
		return France
	}

	// Bare metropolitan postal code: decided by its surrounding context.
	if verdict, ok := disambiguatePostal(collapsed); ok {
		return verdict
	}

	if reCanadianPostal.MatchString(strings.ToUpper(collapsed)) {
		return Foreign
	}

	return Foreign
}

// isForeignName reports whether the address names a foreign country, a major
// foreign city, or a foreign postal convention.
func isForeignName(padded string, tokens []string) bool {
	return foreignCountries.match(padded, tokens) ||
		foreignCities.match(padded, tokens) ||
		foreignConventions.match(padded, tokens)
}

// frenchScore sums the weighted French signals in the address. A five-digit
// code only reinforces an address that already shows some other French
// signal; a bare code stays at zero so the context-scan rule gets to decide.
func frenchScore(raw, padded string, tokens []string) int {
	score := 0

	if fantoirTypes.match(padded, tokens) {
		score += weightStreetType
	}

	score += frenchPlaces.count(padded, tokens) * weightPlace

	score += frenchCues.count(padded, tokens) * weightCue
	for _, r := range accentedFrench {
		if strings.ContainsRune(strings.ToLower(raw), r) {
			score += weightCue
			break
		}
	}

	if score > 0 && reFiveDigits.MatchString(padded) {
		score += weightPostalCode
	}

	return score
}

// disambiguatePostal handles addresses whose only usable signal is a bare
// five-digit code with a metropolitan department prefix (01..95). The 30
// characters on each side of the code are scanned for a foreign name; a hit
// means the code is foreign trivia (a zip, a street number run), absence
// means France.
func disambiguatePostal(collapsed string) (string, bool) {
	loc := reFiveDigits.FindStringIndex(collapsed)
	if loc == nil {
		return "", false
	}
	dept := collapsed[loc[0] : loc[0]+2]
	if dept < "01" || dept > "95" {
		return "", false
	}

	start := loc[0] - postalContextWindow
	if start < 0 {
		start = 0
	}
	end := loc[1] + postalContextWindow
	if end > len(collapsed) {
		end = len(collapsed)
	}
	window := collapsed[start:end]

	if foreignCountries.anySubstring(window) || foreignCities.anySubstring(window) {
		return Foreign, true
	}
	return France, true
}
