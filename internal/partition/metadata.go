package partition

import (
	"path/filepath"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dgallion1/docpart/internal/element"
)

// timestampLayout is the ISO-8601 form used for last_modified values.
const timestampLayout = "2006-01-02T15:04:05"

// baseMetadata assembles the envelope fields shared by every element
// of one partitioning call. Caller overrides win over discovered
// values; a bare override filename leaves the directory empty.
func baseMetadata(sd sourceData, opts Options, filetype string) element.Metadata {
	md := element.Metadata{Filetype: filetype}

	path := sd.filename
	if opts.MetadataFilename != "" {
		path = opts.MetadataFilename
	}
	if path != "" {
		md.FileDirectory, md.Filename = splitPath(path)
	}

	md.LastModified = sd.lastModified
	if opts.MetadataLastModified != "" {
		md.LastModified = opts.MetadataLastModified
	}
	return md
}

func splitPath(path string) (dir, name string) {
	dir, name = filepath.Split(path)
	if len(dir) > 1 {
		dir = dir[:len(dir)-1]
	}
	return dir, name
}

// finalize assigns identifiers and stamps the shared envelope onto
// every element. With metadata off, the envelope is cleared but IDs
// are still assigned.
func finalize(elems []element.Element, base element.Metadata, opts Options) ([]element.Element, error) {
	patterns, err := compileRegexMetadata(opts.RegexMetadata)
	if err != nil {
		return nil, err
	}

	for i := range elems {
		if opts.UniqueElementIDs {
			elems[i].ID = uuid.NewString()
		} else {
			elems[i].ID = element.HashID(elems[i].Text)
		}

		if !opts.IncludeMetadata {
			elems[i].Metadata = element.Metadata{}
			continue
		}

		md := elems[i].Metadata
		md.Filename = base.Filename
		md.FileDirectory = base.FileDirectory
		md.Filetype = base.Filetype
		md.LastModified = base.LastModified
		if len(patterns) > 0 {
			md.RegexMetadata = scanRegexMetadata(elems[i].Text, patterns)
		}
		elems[i].Metadata = md
	}
	return elems, nil
}

func compileRegexMetadata(patterns map[string]string) (map[string]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make(map[string]*regexp.Regexp, len(patterns))
	for name, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, configErrorf("regex_metadata %q: %v", name, err)
		}
		compiled[name] = re
	}
	return compiled, nil
}

// scanRegexMetadata runs every named pattern over the element text.
// Offsets are rune positions; names without hits are omitted entirely.
func scanRegexMetadata(text string, patterns map[string]*regexp.Regexp) map[string][]element.Match {
	var out map[string][]element.Match
	for name, re := range patterns {
		locs := re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		matches := make([]element.Match, 0, len(locs))
		for _, loc := range locs {
			start := utf8.RuneCountInString(text[:loc[0]])
			matches = append(matches, element.Match{
				Text:  text[loc[0]:loc[1]],
				Start: start,
				End:   start + utf8.RuneCountInString(text[loc[0]:loc[1]]),
			})
		}
		if out == nil {
			out = make(map[string][]element.Match)
		}
		out[name] = matches
	}
	return out
}
