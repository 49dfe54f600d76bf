// Package chunker re-segments paragraphs so every piece fits inside
// caller-supplied character bounds. Splitting respects sentence
// boundaries where it can and whitespace where it must; merging never
// folds a list item into the paragraph before it.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docpart/internal/classify"
)

// Bounds are character limits applied when re-segmenting paragraphs.
// Zero disables the corresponding pass. Callers validate Min <= Max
// before handing bounds in.
type Bounds struct {
	Min int // merge paragraphs shorter than this
	Max int // split paragraphs longer than this
}

// DefaultBounds returns the stock limits: split at 1500 characters,
// never merge.
func DefaultBounds() Bounds {
	return Bounds{Min: 0, Max: 1500}
}

// Fit applies both passes in order: each paragraph is split to respect
// Max, then short runs are merged forward to respect Min. The final
// paragraph may remain shorter than Min when nothing follows it.
func Fit(paragraphs []string, b Bounds) []string {
	var split []string
	for _, p := range paragraphs {
		split = append(split, SplitToFitMax(p, b.Max)...)
	}
	return CombineUnderMin(split, b.Min, b.Max)
}

// SplitToFitMax breaks content into segments of at most max characters.
// Content already within the bound comes back untouched. Otherwise
// sentences are packed greedily with single-space joins; a sentence
// longer than max is halved at the whitespace nearest its midpoint,
// recursively, and its last piece seeds the accumulator so trailing
// sentences can still join it. Max <= 0 disables splitting.
func SplitToFitMax(content string, max int) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return []string{content}
	}

	var chunks []string
	tmp := ""
	for _, sentence := range classify.SplitSentences(content) {
		if utf8.RuneCountInString(sentence) > max {
			if tmp != "" {
				chunks = append(chunks, tmp)
			}
			segments := splitAtMidpoint(sentence, max)
			chunks = append(chunks, segments[:len(segments)-1]...)
			tmp = segments[len(segments)-1]
			continue
		}
		switch {
		case tmp == "":
			tmp = sentence
		case utf8.RuneCountInString(tmp)+1+utf8.RuneCountInString(sentence) <= max:
			tmp = tmp + " " + sentence
		default:
			chunks = append(chunks, tmp)
			tmp = sentence
		}
	}
	if tmp != "" {
		chunks = append(chunks, tmp)
	}
	return chunks
}

// CombineUnderMin merges runs of short paragraphs left to right. A
// paragraph under min absorbs the ones after it, joined by single
// spaces, until it reaches min, the next join would push it past max,
// or the next paragraph is a list item. List items are never folded
// into preceding text. Min <= 0 disables merging; max <= 0 removes
// the upper guard.
func CombineUnderMin(paragraphs []string, min, max int) []string {
	if min <= 0 {
		return paragraphs
	}

	var combined []string
	i := 0
	for i < len(paragraphs) {
		para := paragraphs[i]
		if utf8.RuneCountInString(para) >= min {
			combined = append(combined, para)
			i++
			continue
		}
		j := i + 1
		for j < len(paragraphs) {
			next := paragraphs[j]
			if max > 0 && utf8.RuneCountInString(para)+1+utf8.RuneCountInString(next) > max {
				break
			}
			if classify.IsBulleted(next) {
				break
			}
			para = para + " " + next
			j++
			if utf8.RuneCountInString(para) >= min {
				break
			}
		}
		combined = append(combined, para)
		i = j
	}
	return combined
}

// splitAtMidpoint divides content at the whitespace closest to its
// middle, preferring the right side on ties, and recurses until every
// segment fits. Content without any usable whitespace is cut mid-word.
func splitAtMidpoint(content string, max int) []string {
	if utf8.RuneCountInString(content) <= max {
		return []string{content}
	}

	runes := []rune(content)
	mid := len(runes) / 2
	for i := 0; i < len(runes)/2; i++ {
		if unicode.IsSpace(runes[mid+i]) {
			mid += i
			break
		}
		if unicode.IsSpace(runes[mid-i]) {
			mid -= i
			break
		}
	}

	left := strings.TrimRightFunc(string(runes[:mid]), unicode.IsSpace)
	right := strings.TrimLeftFunc(string(runes[mid:]), unicode.IsSpace)
	if left == "" || right == "" {
		// No whitespace to break on; cut at the midpoint.
		left, right = string(runes[:mid]), string(runes[mid:])
		if left == "" || right == "" {
			return []string{content}
		}
	}

	out := splitAtMidpoint(left, max)
	return append(out, splitAtMidpoint(right, max)...)
}
