package partition

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dgallion1/docpart/internal/element"
)

// Partitioner is the shared shape of the format entry points.
type Partitioner func(Source, Options) ([]element.Element, error)

// SupportedExtensions maps the file extensions Auto dispatches on
// without sniffing content.
var SupportedExtensions = map[string]Partitioner{
	".txt":      Text,
	".html":     HTML,
	".htm":      HTML,
	".md":       Markdown,
	".markdown": Markdown,
	".docx":     Docx,
	".pdf":      Pdf,
	".csv":      Csv,
}

// Strategies maps the partitioner names callers pass in requests to
// their implementations.
var Strategies = map[string]Partitioner{
	"text":     Text,
	"html":     HTML,
	"md":       Markdown,
	"markdown": Markdown,
	"docx":     Docx,
	"pdf":      Pdf,
	"csv":      Csv,
	"auto":     Auto,
}

// ForStrategy resolves a partitioner by name. The empty name means
// auto-detection.
func ForStrategy(name string) (Partitioner, error) {
	if name == "" {
		return Auto, nil
	}
	p, ok := Strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, configErrorf("unknown strategy %q", name)
	}
	return p, nil
}

// Auto picks a partitioner: by filename extension when one is known,
// otherwise by the URL response type or by sniffing the content.
// Unrecognized content is a configuration error naming the detected
// MIME type.
func Auto(src Source, opts Options) ([]element.Element, error) {
	name := src.Filename
	if name == "" {
		name = opts.MetadataFilename
	}
	if p, ok := SupportedExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return p(src, opts)
	}

	sd, err := resolveSource(src, opts, acceptAny)
	if err != nil {
		return nil, err
	}
	data := sd.data
	if sd.decoded {
		data = []byte(sd.text)
	}

	// Path and text sources can be read again by the dispatched
	// partitioner. Streams and URL bodies are already consumed, so they
	// hand over their bytes, carrying discovered provenance through the
	// override fields.
	resolved := src
	if src.Filename == "" && src.Text == nil {
		resolved = Source{File: bytes.NewReader(data)}
		if opts.MetadataLastModified == "" {
			opts.MetadataLastModified = sd.lastModified
		}
	}

	if p := partitionerForContentType(sd.contentType); p != nil {
		return p(resolved, opts)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Text(resolved, opts)
	}

	mt := mimetype.Detect(data)
	switch {
	case mt.Is("text/html") || mt.Is("application/xhtml+xml"):
		return HTML(resolved, opts)
	case mt.Is(filetypeDocx):
		return Docx(resolved, opts)
	case mt.Is("application/pdf"):
		return Pdf(resolved, opts)
	case mt.Is("text/csv"):
		return Csv(resolved, opts)
	case mt.Is("text/markdown"):
		return Markdown(resolved, opts)
	case mt.Is("text/plain") || strings.HasPrefix(mt.String(), "text/"):
		return Text(resolved, opts)
	}
	return nil, configErrorf("unsupported file type %q", mt.String())
}

func partitionerForContentType(contentType string) Partitioner {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case ct == "text/html" || ct == "application/xhtml+xml":
		return HTML
	case ct == "text/markdown":
		return Markdown
	case ct == "text/csv":
		return Csv
	case ct == "application/pdf":
		return Pdf
	case ct == filetypeDocx:
		return Docx
	case strings.HasPrefix(ct, "text/"):
		return Text
	}
	return nil
}
