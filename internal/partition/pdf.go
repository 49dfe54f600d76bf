package partition

import (
	"bytes"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docpart/internal/element"
)

const filetypePDF = "application/pdf"

// Pdf partitions a PDF from its plain-text layer, page by page. Each
// page runs through the text pipeline and its elements carry the page
// number; page seams emit PageBreak elements when requested. There is
// no layout analysis: text comes back in content-stream order.
func Pdf(src Source, opts Options) ([]element.Element, error) {
	if err := validateBounds(opts); err != nil {
		return nil, err
	}
	sd, err := resolveSource(src, opts, acceptAny)
	if err != nil {
		return nil, err
	}

	reader, err := pdflib.NewReader(bytes.NewReader(sd.data), int64(len(sd.data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	var elems []element.Element
	lastPage := 0
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageElems := classifyText(text, opts)
		if len(pageElems) == 0 {
			continue
		}
		if opts.IncludePageBreaks && lastPage > 0 {
			elems = append(elems, element.Element{
				Category: element.PageBreak,
				Metadata: element.Metadata{PageNumber: lastPage},
			})
		}
		for j := range pageElems {
			pageElems[j].Metadata.PageNumber = i
		}
		elems = append(elems, pageElems...)
		lastPage = i
	}
	return finalize(elems, baseMetadata(sd, opts, filetypePDF), opts)
}
