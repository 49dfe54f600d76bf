// Package partition splits documents into classified elements. Each
// partitioner accepts one source (a path, an open stream, an in-memory
// string, or a URL), decodes it, and returns elements in document order
// with their metadata envelopes populated.
package partition

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Source names the document to partition. Exactly one field must be
// set. Text is a pointer so an empty string still counts as supplied.
type Source struct {
	Filename string
	File     io.Reader
	Text     *string
	URL      string
}

// Options control decoding, sizing, and metadata capture. The zero
// value disables everything; start from DefaultOptions for the stock
// behavior.
type Options struct {
	// Encoding forces a character encoding by WHATWG name ("utf-8",
	// "utf-16", "windows-1252", ...). Empty means auto-detect.
	Encoding string

	// MetadataFilename overrides the filename recorded in element
	// metadata. MetadataLastModified overrides the recorded
	// modification timestamp.
	MetadataFilename     string
	MetadataLastModified string

	// IncludeMetadata false leaves every element's metadata envelope
	// zero-valued. IDs are still assigned.
	IncludeMetadata bool

	// UniqueElementIDs assigns random UUIDs instead of text hashes.
	UniqueElementIDs bool

	// ParagraphGrouper rewrites raw text before paragraph splitting.
	// GroupBrokenParagraphs is the stock choice for hard-wrapped text.
	ParagraphGrouper func(string) string

	// MinPartition and MaxPartition bound element text length in
	// characters. Zero disables a bound. Min above a set Max is a
	// configuration error.
	MinPartition int
	MaxPartition int

	// RegexMetadata maps names to patterns scanned against each
	// element's final text.
	RegexMetadata map[string]string

	// SkipHeadersAndFooters prunes header and footer subtrees from
	// HTML. AssembleArticles restricts HTML partitioning to article
	// subtrees when the document has any.
	SkipHeadersAndFooters bool
	AssembleArticles      bool

	// IncludePageBreaks emits PageBreak elements at page boundaries:
	// horizontal rules and page-break styles in HTML, rule lines in
	// plain text, page seams in paged formats.
	IncludePageBreaks bool

	// URL sources.
	Headers      map[string]string
	FetchTimeout time.Duration
}

// DefaultOptions returns the stock configuration: metadata on, article
// assembly on, elements capped at 1500 characters.
func DefaultOptions() Options {
	return Options{
		IncludeMetadata:  true,
		AssembleArticles: true,
		MaxPartition:     1500,
		FetchTimeout:     30 * time.Second,
	}
}

// ConfigError reports an invalid partitioning request: a bad source
// combination, an unusable URL response, or bounds that cannot be
// satisfied.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "partition: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// DecodeError reports content that could not be decoded with the
// requested or detected character encoding.
type DecodeError struct {
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %v", e.Encoding, e.Err)
	}
	return "decode " + e.Encoding
}

func (e *DecodeError) Unwrap() error { return e.Err }

// sourceData is a resolved source: raw bytes plus whatever provenance
// the source carried. Text sources arrive already decoded.
type sourceData struct {
	data         []byte
	text         string
	decoded      bool
	filename     string
	lastModified string
	contentType  string
}

// acceptKind narrows which response Content-Types a URL source may
// carry. File, stream, and text sources are never checked.
type acceptKind int

const (
	acceptAny acceptKind = iota
	acceptText
	acceptHTML
)

// resolveSource validates that exactly one source field is set and
// loads its content.
func resolveSource(src Source, opts Options, accept acceptKind) (sourceData, error) {
	n := 0
	if src.Filename != "" {
		n++
	}
	if src.File != nil {
		n++
	}
	if src.Text != nil {
		n++
	}
	if src.URL != "" {
		n++
	}
	if n != 1 {
		return sourceData{}, configErrorf("exactly one of filename, file, text, or url must be provided")
	}

	switch {
	case src.Filename != "":
		data, err := os.ReadFile(src.Filename)
		if err != nil {
			return sourceData{}, fmt.Errorf("read %s: %w", src.Filename, err)
		}
		sd := sourceData{data: data, filename: src.Filename}
		if info, err := os.Stat(src.Filename); err == nil {
			sd.lastModified = info.ModTime().Format(timestampLayout)
		}
		return sd, nil

	case src.File != nil:
		data, err := io.ReadAll(src.File)
		if err != nil {
			return sourceData{}, fmt.Errorf("read stream: %w", err)
		}
		return sourceData{data: data}, nil

	case src.Text != nil:
		return sourceData{text: *src.Text, decoded: true}, nil

	default:
		f, err := fetchURL(src.URL, opts.Headers, opts.FetchTimeout)
		if err != nil {
			return sourceData{}, err
		}
		switch accept {
		case acceptHTML:
			if !isHTMLContentType(f.contentType) {
				return sourceData{}, configErrorf("expected the url %q to have an HTML content type, got %q", src.URL, f.contentType)
			}
		case acceptText:
			if !isTextContentType(f.contentType) {
				return sourceData{}, configErrorf("expected the url %q to have a text content type, got %q", src.URL, f.contentType)
			}
		}
		return sourceData{
			data:         f.data,
			lastModified: f.lastModified,
			contentType:  f.contentType,
		}, nil
	}
}

// validateBounds rejects a min bound above a set max bound.
func validateBounds(opts Options) error {
	if opts.MinPartition > 0 && opts.MaxPartition > 0 && opts.MinPartition > opts.MaxPartition {
		return configErrorf("min_partition %d exceeds max_partition %d", opts.MinPartition, opts.MaxPartition)
	}
	return nil
}
