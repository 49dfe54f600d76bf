package classify

import (
	"regexp"
	"strings"
	"unicode"
)

// bulletRunes are the glyphs recognized as list markers when they lead
// a paragraph. Compiled once; never mutated.
var bulletRunes = map[rune]bool{
	'\u0095': true, // windows-1252 bullet carried through sloppy decoders
	'•':      true,
	'‣':      true,
	'⁃':      true,
	'ㅤ':      true,
	'⁌':      true,
	'⁍':      true,
	'∙':      true,
	'◊':      true,
	'○':      true,
	'●':      true,
	'◘':      true,
	'◦':      true,
	'☙':      true,
	'❥':      true,
	'❧':      true,
	'⦾':      true,
	'⦿':      true,
	'·':      true,
	'-':      true,
	'*':      true,
}

var (
	// Numbered ("1." / "12)") and lettered ("a)" / "b.") list markers.
	// Lettered markers are lowercase only so leading initials like
	// "A. Smith" stay prose.
	enumeratedMarkerRE = regexp.MustCompile(`^(?:\d{1,3}|[a-z])[.)]\s+`)

	// A run of a single rule character and nothing else.
	pageBreakRuleRE = regexp.MustCompile(`^(?:-{4,}|_{4,}|={4,}|~{4,}|\*{4,})$`)

	usCityStateZipRE = regexp.MustCompile(
		`(?i)\b(?:[A-Z][a-z.\-]*\s)*[A-Z][a-z.\-]*,\s?[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`)
	poBoxRE = regexp.MustCompile(`(?i)^p\.?\s?o\.?\s?box\s+\d+`)
)

// IsBulleted reports whether text starts with a list marker. A bullet
// glyph immediately followed by another glyph is a horizontal rule,
// not a marker, so "-----" style separators never read as list items.
func IsBulleted(text string) bool {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) == 0 {
		return false
	}
	if bulletRunes[runes[0]] {
		return len(runes) == 1 || !bulletRunes[runes[1]]
	}
	return enumeratedMarkerRE.MatchString(trimmed)
}

// CleanBullets strips the leading list marker and surrounding
// whitespace from text. Text without a marker is returned trimmed.
func CleanBullets(text string) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) == 0 {
		return trimmed
	}
	if bulletRunes[runes[0]] && (len(runes) == 1 || !bulletRunes[runes[1]]) {
		return strings.TrimSpace(string(runes[1:]))
	}
	if loc := enumeratedMarkerRE.FindStringIndex(trimmed); loc != nil {
		return strings.TrimSpace(trimmed[loc[1]:])
	}
	return trimmed
}

// IsPageBreakRule reports whether text is a bare horizontal rule line.
func IsPageBreakRule(text string) bool {
	return pageBreakRuleRE.MatchString(strings.TrimSpace(text))
}

// IsAddress reports whether text looks like a US postal fragment:
// a city/state/ZIP sequence or a PO box line.
func IsAddress(text string) bool {
	trimmed := strings.TrimSpace(text)
	return usCityStateZipRE.MatchString(trimmed) || poBoxRE.MatchString(trimmed)
}

// isNumeric reports whether text is digits only once trimmed.
func isNumeric(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// underNonAlphaRatio reports whether the share of letters among
// non-space characters falls below threshold. Separator lines and
// heavy punctuation fail this check.
func underNonAlphaRatio(text string, threshold float64) bool {
	var letters, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return false
	}
	return float64(letters)/float64(total) < threshold
}
