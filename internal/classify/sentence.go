package classify

import (
	"strings"
	"unicode"
)

// SplitSentences does basic sentence splitting: a run of terminal
// punctuation followed by whitespace or end of input closes a
// sentence. Abbreviations are not special-cased.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if !isTerminal(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isTerminal(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}
		if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// SentenceCount returns the number of sentences in text with at least
// minWords words. Fragments shorter than the floor are not counted, so
// dotted runs like "ITEM 1A. RISK FACTORS" still read as one unit.
func SentenceCount(text string, minWords int) int {
	count := 0
	for _, s := range SplitSentences(text) {
		if len(strings.Fields(s)) >= minWords {
			count++
		}
	}
	return count
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// hasTerminalPunct reports whether text ends with sentence punctuation.
func hasTerminalPunct(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	runes := []rune(trimmed)
	return isTerminal(runes[len(runes)-1])
}
