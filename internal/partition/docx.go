package partition

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docpart/internal/classify"
	"github.com/dgallion1/docpart/internal/element"
)

const filetypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Docx partitions a Word document by walking its body paragraphs.
// Heading and Title styles map to Title, list styles to ListItem, and
// everything else goes through the text classifier.
func Docx(src Source, opts Options) ([]element.Element, error) {
	if err := validateBounds(opts); err != nil {
		return nil, err
	}
	sd, err := resolveSource(src, opts, acceptAny)
	if err != nil {
		return nil, err
	}

	doc, err := docx.Parse(bytes.NewReader(sd.data), int64(len(sd.data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var elems []element.Element
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := normalizeWhitespace(docxParagraphText(para))
		if text == "" {
			continue
		}

		style := docxStyle(para)
		switch {
		case docxHeadingLevel(style) > 0 || style == "title":
			elems = append(elems, element.Element{Category: element.Title, Text: text})
		case docxListStyles[style]:
			elems = append(elems, element.Element{Category: element.ListItem, Text: classify.CleanBullets(text)})
		default:
			cat := classify.Text(text, false)
			if cat == element.ListItem {
				text = classify.CleanBullets(text)
			}
			elems = append(elems, element.Element{Category: cat, Text: text})
		}
	}
	return finalize(elems, baseMetadata(sd, opts, filetypeDocx), opts)
}

// docxListStyles are the stock Word style names for bulleted and
// numbered paragraphs, normalized to lowercase with spaces removed.
var docxListStyles = map[string]bool{
	"listparagraph": true,
	"listbullet":    true,
	"listnumber":    true,
}

// docxStyle returns the paragraph style normalized for comparison:
// "Heading 1" and "heading1" read the same.
func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(para.Properties.Style.Val), " ", "")
}

func docxHeadingLevel(style string) int {
	if len(style) != len("heading1") || !strings.HasPrefix(style, "heading") {
		return 0
	}
	if c := style[len(style)-1]; c >= '1' && c <= '6' {
		return int(c - '0')
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				sb.WriteString(t.Text)
			}
		}
	}
	return sb.String()
}
