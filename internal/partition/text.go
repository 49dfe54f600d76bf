package partition

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docpart/internal/chunker"
	"github.com/dgallion1/docpart/internal/classify"
	"github.com/dgallion1/docpart/internal/element"
)

const filetypeText = "text/plain"

var (
	// Every newline separates paragraphs; surrounding whitespace folds
	// into the boundary so indented continuations do not survive.
	lineBoundaryRE = regexp.MustCompile(`\s*\n\s*`)
	// Blank-line boundaries for the paragraph grouper.
	blankLineBoundaryRE = regexp.MustCompile(`\s*\n\s*\n\s*`)
)

// Text partitions plain text into classified elements, one per
// paragraph after the sizing bounds are applied.
func Text(src Source, opts Options) ([]element.Element, error) {
	if err := validateBounds(opts); err != nil {
		return nil, err
	}
	sd, err := resolveSource(src, opts, acceptText)
	if err != nil {
		return nil, err
	}
	text, err := decodeSource(sd, opts, false)
	if err != nil {
		return nil, err
	}
	return finalize(classifyText(text, opts), baseMetadata(sd, opts, filetypeText), opts)
}

// classifyText runs the plain-text pipeline: group, split into
// paragraphs, apply bounds, classify each survivor. Shared with the
// page-oriented partitioners.
func classifyText(text string, opts Options) []element.Element {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil
	}
	if opts.ParagraphGrouper != nil {
		raw = strings.TrimSpace(opts.ParagraphGrouper(raw))
	}

	bounds := chunker.Bounds{Min: opts.MinPartition, Max: opts.MaxPartition}
	var elems []element.Element
	for _, para := range chunker.Fit(splitParagraphs(raw), bounds) {
		switch cat := classify.Text(para, opts.IncludePageBreaks); cat {
		case element.PageBreak:
			elems = append(elems, element.Element{Category: element.PageBreak})
		case element.ListItem:
			elems = append(elems, element.Element{Category: cat, Text: classify.CleanBullets(para)})
		default:
			elems = append(elems, element.Element{Category: cat, Text: para})
		}
	}
	return elems
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, para := range lineBoundaryRE.Split(text, -1) {
		if para != "" {
			paragraphs = append(paragraphs, para)
		}
	}
	return paragraphs
}

// GroupBrokenParagraphs rewrites hard-wrapped text so that only blank
// lines separate paragraphs: wrapped lines rejoin with spaces, runs of
// short lines stay separate, and wrapped bullet items regroup at each
// bullet glyph. Pass it as the ParagraphGrouper for text whose line
// breaks are layout, not structure.
func GroupBrokenParagraphs(text string) string {
	var grouped []string
	for _, para := range blankLineBoundaryRE.Split(strings.TrimSpace(text), -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := lineBoundaryRE.Split(para, -1)
		switch {
		case classify.IsBulleted(para):
			grouped = append(grouped, groupBulletedLines(lines)...)
		case allLinesShort(lines):
			for _, line := range lines {
				if strings.TrimSpace(line) != "" {
					grouped = append(grouped, line)
				}
			}
		default:
			grouped = append(grouped, strings.Join(lines, " "))
		}
	}
	return strings.Join(grouped, "\n\n")
}

func allLinesShort(lines []string) bool {
	for _, line := range lines {
		if len(strings.Fields(line)) >= 5 {
			return false
		}
	}
	return true
}

// groupBulletedLines starts a new item at every bullet-led line and
// folds continuation lines into the item before them.
func groupBulletedLines(lines []string) []string {
	var items []string
	current := ""
	for _, line := range lines {
		switch {
		case current == "" || classify.IsBulleted(line):
			if current != "" {
				items = append(items, current)
			}
			current = line
		default:
			current += " " + line
		}
	}
	if current != "" {
		items = append(items, current)
	}
	return items
}
