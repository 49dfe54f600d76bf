// Package classify assigns semantic categories to paragraphs of text
// using deterministic rules: no models, no dictionaries beyond a fixed
// word list, same answer on every run.
package classify

import (
	"strings"
	"unicode"

	"github.com/dgallion1/docpart/internal/element"
)

const (
	titleMaxWords     = 12
	nonAlphaThreshold = 0.5
	capRatioThreshold = 0.5
)

// verbForms is a fixed list of common English verb forms. A line
// containing one of these reads as prose rather than a heading unless
// its capitalization says otherwise. Deliberately conservative: nouns
// that double as verbs ("test", "link", "points") are excluded so
// headings keep their category.
var verbForms = map[string]bool{
	"am": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "having": true,
	"do": true, "does": true, "did": true, "doing": true,
	"will": true, "would": true, "shall": true, "should": true,
	"can": true, "could": true, "may": true, "might": true, "must": true,
	"isn't": true, "aren't": true, "wasn't": true, "weren't": true,
	"don't": true, "doesn't": true, "didn't": true, "won't": true,
	"can't": true, "couldn't": true, "wouldn't": true, "shouldn't": true,
	"go": true, "goes": true, "went": true, "going": true, "gone": true,
	"get": true, "gets": true, "got": true, "getting": true,
	"make": true, "makes": true, "made": true, "making": true,
	"take": true, "takes": true, "took": true, "taking": true,
	"come": true, "comes": true, "came": true, "coming": true,
	"see": true, "sees": true, "saw": true, "seen": true,
	"know": true, "knows": true, "knew": true, "known": true,
	"want": true, "wants": true, "wanted": true,
	"use": true, "uses": true, "used": true, "using": true,
	"find": true, "finds": true, "found": true,
	"give": true, "gives": true, "gave": true, "given": true,
	"tell": true, "tells": true, "told": true,
	"call": true, "calls": true, "called": true,
	"try": true, "tries": true, "tried": true,
	"need": true, "needs": true, "needed": true,
	"feel": true, "feels": true, "felt": true,
	"become": true, "becomes": true, "became": true,
	"leave": true, "leaves": true, "left": true,
	"put": true, "puts": true,
	"mean": true, "means": true, "meant": true,
	"keep": true, "keeps": true, "kept": true,
	"let": true, "lets": true,
	"begin": true, "begins": true, "began": true, "begun": true,
	"seem": true, "seems": true, "seemed": true,
	"help": true, "helps": true, "helped": true,
	"show": true, "shows": true, "showed": true, "shown": true,
	"hear": true, "hears": true, "heard": true,
	"run": true, "runs": true, "ran": true, "running": true,
	"move": true, "moves": true, "moved": true,
	"live": true, "lives": true, "lived": true,
	"bring": true, "brings": true, "brought": true,
	"happen": true, "happens": true, "happened": true,
	"write": true, "writes": true, "wrote": true, "written": true,
	"sit": true, "sits": true, "sat": true,
	"stand": true, "stands": true, "stood": true,
	"lose": true, "loses": true, "lost": true,
	"pay": true, "pays": true, "paid": true,
	"meet": true, "meets": true, "met": true,
	"include": true, "includes": true, "included": true,
	"continue": true, "continues": true, "continued": true,
	"learn": true, "learns": true, "learned": true,
	"change": true, "changes": true, "changed": true,
	"lead": true, "leads": true, "led": true,
	"understand": true, "understands": true, "understood": true,
	"watch": true, "watches": true, "watched": true,
	"follow": true, "follows": true, "followed": true,
	"stop": true, "stops": true, "stopped": true,
	"serve": true, "serves": true, "served": true,
	"walk": true, "walks": true, "walked": true, "walking": true,
	"love": true, "loves": true, "loved": true,
	"matter": true, "matters": true, "mattered": true,
	"speak": true, "speaks": true, "spoke": true, "spoken": true,
}

// Text assigns a category to one paragraph of plain text. Checks run
// in a fixed order: horizontal rules (only when detectPageBreaks is
// set), postal addresses, list markers, then the title and narrative
// heuristics. Anything that matches nothing is UncategorizedText with
// its text preserved. The bullet marker is not stripped here; callers
// building ListItem elements apply CleanBullets themselves.
func Text(text string, detectPageBreaks bool) element.Category {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return element.UncategorizedText
	}
	if detectPageBreaks && IsPageBreakRule(trimmed) {
		return element.PageBreak
	}
	if IsAddress(trimmed) {
		return element.Address
	}
	if IsBulleted(trimmed) {
		return element.ListItem
	}
	if IsPossibleTitle(trimmed) {
		return element.Title
	}
	if IsPossibleNarrative(trimmed) {
		return element.NarrativeText
	}
	return element.UncategorizedText
}

// IsPossibleTitle reports whether text reads as a heading: short, not
// letter-starved, not multi-sentence, and not obviously prose. A line
// with a common verb form is prose unless its capitalization pattern
// (all caps or title case) overrides.
func IsPossibleTitle(text string) bool {
	if text == "" || isNumeric(text) {
		return false
	}
	if wordCount(text) > titleMaxWords {
		return false
	}
	if underNonAlphaRatio(text, nonAlphaThreshold) {
		return false
	}
	if SentenceCount(text, 5) > 1 {
		return false
	}
	if strings.HasSuffix(text, ",") {
		return false
	}
	// A full declarative sentence ends with a period; short dotted
	// fragments like "End." or "My first paragraph." still qualify.
	if strings.HasSuffix(text, ".") && wordCount(text) >= 5 {
		return false
	}
	if ContainsVerb(text) && !exceedsCapRatio(text, capRatioThreshold) {
		return false
	}
	return true
}

// IsPossibleNarrative reports whether text reads as running prose:
// multiple real sentences, a verb form, or a terminally punctuated
// line of at least five words. Mostly-capitalized or letter-starved
// text never qualifies.
func IsPossibleNarrative(text string) bool {
	if text == "" || isNumeric(text) {
		return false
	}
	if underNonAlphaRatio(text, nonAlphaThreshold) {
		return false
	}
	if exceedsCapRatio(text, capRatioThreshold) {
		return false
	}
	if SentenceCount(text, 5) >= 2 {
		return true
	}
	if ContainsVerb(text) {
		return true
	}
	if wordCount(text) >= 5 && hasTerminalPunct(text) {
		return true
	}
	return false
}

// ContainsVerb reports whether any word of text, case-folded and
// stripped of surrounding punctuation, is a known verb form.
func ContainsVerb(text string) bool {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '\''
		})
		if verbForms[w] {
			return true
		}
	}
	return false
}

// exceedsCapRatio reports whether too many words are capitalized for
// the text to read as prose. Multi-sentence text is exempt; line
// breaks inside prose often capitalize more than threshold allows.
func exceedsCapRatio(text string, threshold float64) bool {
	if SentenceCount(text, 3) > 1 {
		return false
	}
	if isAllCaps(text) {
		return true
	}

	var tokens, capitalized int
	for _, w := range strings.Fields(text) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if w == "" || !isLetterWord(w) {
			continue
		}
		tokens++
		if first := []rune(w)[0]; unicode.IsUpper(first) {
			capitalized++
		}
	}
	if tokens == 0 {
		return false
	}
	return float64(capitalized)/float64(tokens) > threshold
}

// isAllCaps reports whether text has cased letters and none of them
// are lowercase.
func isAllCaps(text string) bool {
	hasUpper := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

func isLetterWord(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return w != ""
}
