package partition

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/dgallion1/docpart/internal/element"
)

const filetypeCSV = "text/csv"

// Csv partitions delimited data into a single Table element. The text
// holds cells joined by spaces and rows by newlines; text_as_html
// carries a table rendering of the same rows.
func Csv(src Source, opts Options) ([]element.Element, error) {
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

	reader := csv.NewReader(strings.NewReader(text))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	base := baseMetadata(sd, opts, filetypeCSV)
	body := tableText(records)
	if body == "" {
		return finalize(nil, base, opts)
	}

	elems := []element.Element{{
		Category: element.Table,
		Text:     body,
		Metadata: element.Metadata{TextAsHTML: tableHTML(records)},
	}}
	return finalize(elems, base, opts)
}
