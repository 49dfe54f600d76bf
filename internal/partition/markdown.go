package partition

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/dgallion1/docpart/internal/element"
)

const filetypeMarkdown = "text/markdown"

// Markdown partitions Markdown by rendering it to HTML and walking the
// result: headings become Titles, list items ListItems, and emphasis
// and links land in metadata like any other markup.
func Markdown(src Source, opts Options) ([]element.Element, error) {
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

	var rendered bytes.Buffer
	if err := goldmark.New().Convert([]byte(text), &rendered); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	elems, err := partitionHTMLString(rendered.String(), opts)
	if err != nil {
		return nil, err
	}
	return finalize(elems, baseMetadata(sd, opts, filetypeMarkdown), opts)
}
