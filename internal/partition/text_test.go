package partition

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dgallion1/docpart/internal/element"
)

const fakeTextDocument = `This is a test document to use for unit tests.

Doylestown, PA 18901

Important points:

- Hamburgers are delicious
- Dogs are the best
- I love fuzzy blankets`

const shortParagraphs = `This is a story.

This is a story that doesn't matter because it is just being used as an example.

Hi.

Hello.

Howdy.

Hola.

The example is simple and repetitive and long and somewhat boring, but it serves a purpose.

End.
`

func strptr(s string) *string { return &s }

func checkElements(t *testing.T, got, want []element.Element) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("element[%d]: expected %s %q, got %s %q",
				i, want[i].Category, want[i].Text, got[i].Category, got[i].Text)
		}
	}
}

func TestText_ClassifiesDocument(t *testing.T) {
	elements, err := Text(Source{Text: strptr(fakeTextDocument)}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkElements(t, elements, []element.Element{
		{Category: element.NarrativeText, Text: "This is a test document to use for unit tests."},
		{Category: element.Address, Text: "Doylestown, PA 18901"},
		{Category: element.Title, Text: "Important points:"},
		{Category: element.ListItem, Text: "Hamburgers are delicious"},
		{Category: element.ListItem, Text: "Dogs are the best"},
		{Category: element.ListItem, Text: "I love fuzzy blankets"},
	})
}

func TestText_FromFileCapturesMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-text.txt")
	if err := os.WriteFile(path, []byte(fakeTextDocument), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	elements, err := Text(Source{Filename: path}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) == 0 {
		t.Fatal("expected elements, got none")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat fixture: %v", err)
	}
	wantModified := info.ModTime().Format("2006-01-02T15:04:05")

	for i, el := range elements {
		md := el.Metadata
		if md.Filename != "fake-text.txt" {
			t.Errorf("element[%d]: expected filename %q, got %q", i, "fake-text.txt", md.Filename)
		}
		if md.FileDirectory != dir {
			t.Errorf("element[%d]: expected file_directory %q, got %q", i, dir, md.FileDirectory)
		}
		if md.Filetype != "text/plain" {
			t.Errorf("element[%d]: expected filetype %q, got %q", i, "text/plain", md.Filetype)
		}
		if md.LastModified != wantModified {
			t.Errorf("element[%d]: expected last_modified %q, got %q", i, wantModified, md.LastModified)
		}
	}
}

func TestText_FromReaderHasNoFilename(t *testing.T) {
	elements, err := Text(Source{File: strings.NewReader(fakeTextDocument)}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, el := range elements {
		if el.Metadata.Filename != "" {
			t.Errorf("element[%d]: expected empty filename, got %q", i, el.Metadata.Filename)
		}
	}
}

func TestText_MetadataFilenameOverride(t *testing.T) {
	opts := DefaultOptions()
	opts.MetadataFilename = "override.txt"
	elements, err := Text(Source{File: strings.NewReader(fakeTextDocument)}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, el := range elements {
		if el.Metadata.Filename != "override.txt" {
			t.Errorf("element[%d]: expected filename %q, got %q", i, "override.txt", el.Metadata.Filename)
		}
		if el.Metadata.FileDirectory != "" {
			t.Errorf("element[%d]: expected empty file_directory, got %q", i, el.Metadata.FileDirectory)
		}
	}
}

func TestText_MetadataLastModifiedOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dated.txt")
	if err := os.WriteFile(path, []byte("A single line."), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	opts := DefaultOptions()
	opts.MetadataLastModified = "2020-07-05T09:24:28"
	elements, err := Text(Source{Filename: path}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	if got := elements[0].Metadata.LastModified; got != "2020-07-05T09:24:28" {
		t.Errorf("expected last_modified %q, got %q", "2020-07-05T09:24:28", got)
	}
}

func TestText_EmptyString(t *testing.T) {
	elements, err := Text(Source{Text: strptr("")}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 0 {
		t.Errorf("expected 0 elements for empty input, got %d", len(elements))
	}
}

func TestText_RequiresExactlyOneSource(t *testing.T) {
	var cfgErr *ConfigError

	_, err := Text(Source{}, DefaultOptions())
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for empty source, got %v", err)
	}

	_, err = Text(Source{Filename: "x.txt", Text: strptr("hello")}, DefaultOptions())
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for two sources, got %v", err)
	}
}

func TestText_CapturesEverythingAcrossLinebreaks(t *testing.T) {
	text := "\nVERY IMPORTANT MEMO\nDOYLESTOWN, PA 18901\n"
	elements, err := Text(Source{Text: strptr(text)}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkElements(t, elements, []element.Element{
		{Category: element.Title, Text: "VERY IMPORTANT MEMO"},
		{Category: element.Address, Text: "DOYLESTOWN, PA 18901"},
	})
}

func TestText_GroupBrokenParagraphsOption(t *testing.T) {
	text := "The big brown fox\nwas walking down the lane.\n\nAt the end of the lane,\nthe fox met a bear."
	opts := DefaultOptions()
	opts.ParagraphGrouper = GroupBrokenParagraphs

	elements, err := Text(Source{Text: strptr(text)}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkElements(t, elements, []element.Element{
		{Category: element.NarrativeText, Text: "The big brown fox was walking down the lane."},
		{Category: element.NarrativeText, Text: "At the end of the lane, the fox met a bear."},
	})
}

func TestGroupBrokenParagraphs_ShortLinesStaySeparate(t *testing.T) {
	got := GroupBrokenParagraphs("Apple\nBanana\nCherry")
	want := "Apple\n\nBanana\n\nCherry"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGroupBrokenParagraphs_RegroupsBulletedLines(t *testing.T) {
	got := GroupBrokenParagraphs("- item one\ncontinues here\n- item two")
	want := "- item one continues here\n\n- item two"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestText_RegexMetadata(t *testing.T) {
	opts := DefaultOptions()
	opts.RegexMetadata = map[string]string{"speaker": `SPEAKER \d{1,3}`}

	elements, err := Text(Source{Text: strptr("SPEAKER 1: It is my turn to speak now!")}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	got := elements[0].Metadata.RegexMetadata["speaker"]
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	want := element.Match{Text: "SPEAKER 1", Start: 0, End: 9}
	if got[0] != want {
		t.Errorf("expected match %+v, got %+v", want, got[0])
	}
}

func TestText_RegexMetadataRuneOffsets(t *testing.T) {
	opts := DefaultOptions()
	opts.RegexMetadata = map[string]string{"speaker": `SPEAKER \d`}

	elements, err := Text(Source{Text: strptr("每日新闻 SPEAKER 1")}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	got := elements[0].Metadata.RegexMetadata["speaker"]
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	want := element.Match{Text: "SPEAKER 1", Start: 5, End: 14}
	if got[0] != want {
		t.Errorf("expected match %+v, got %+v", want, got[0])
	}
}

func TestText_RegexMetadataInvalidPattern(t *testing.T) {
	opts := DefaultOptions()
	opts.RegexMetadata = map[string]string{"bad": "("}

	// The pattern is rejected even when the input produces no elements.
	_, err := Text(Source{Text: strptr("")}, opts)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for invalid pattern, got %v", err)
	}
}

func TestText_RuleLineIsNotAListItem(t *testing.T) {
	elements, err := Text(Source{Text: strptr("--------------------")}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	if elements[0].Category == element.ListItem {
		t.Error("expected rule line not to classify as ListItem")
	}
	if elements[0].Text != "--------------------" {
		t.Errorf("expected text preserved, got %q", elements[0].Text)
	}
}

func TestText_RuleLineBecomesPageBreakWhenRequested(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludePageBreaks = true

	elements, err := Text(Source{Text: strptr("Page one text here.\n\n--------------------\n\nPage two text here.")}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elements))
	}
	if elements[1].Category != element.PageBreak {
		t.Errorf("expected PageBreak, got %s", elements[1].Category)
	}
	if elements[1].Text != "" {
		t.Errorf("expected empty page break text, got %q", elements[1].Text)
	}
}

func TestText_MinPartitionMergesShortParagraphs(t *testing.T) {
	opts := DefaultOptions()
	opts.MinPartition = 6
	opts.MaxPartition = 0

	elements, err := Text(Source{Text: strptr(shortParagraphs)}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) == 0 {
		t.Fatal("expected elements, got none")
	}
	// The last element has nothing to merge with, so it may stay short.
	for i, el := range elements[:len(elements)-1] {
		if utf8.RuneCountInString(el.Text) < 6 {
			t.Errorf("element[%d]: expected at least 6 characters, got %d (%q)",
				i, utf8.RuneCountInString(el.Text), el.Text)
		}
	}
}

func TestText_MinMaxPartitionBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.MinPartition = 7
	opts.MaxPartition = 20

	elements, err := Text(Source{Text: strptr(shortParagraphs)}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, el := range elements {
		n := utf8.RuneCountInString(el.Text)
		if n > 20 {
			t.Errorf("element[%d]: expected at most 20 characters, got %d (%q)", i, n, el.Text)
		}
		if i < len(elements)-1 && n < 7 {
			t.Errorf("element[%d]: expected at least 7 characters, got %d (%q)", i, n, el.Text)
		}
	}
}

func TestText_BoundsPreserveWords(t *testing.T) {
	opts := DefaultOptions()
	opts.MinPartition = 7
	opts.MaxPartition = 20

	elements, err := Text(Source{Text: strptr(shortParagraphs)}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var texts []string
	for _, el := range elements {
		texts = append(texts, el.Text)
	}
	got := strings.Fields(strings.Join(texts, " "))
	want := strings.Fields(shortParagraphs)
	if len(got) != len(want) {
		t.Fatalf("expected %d words, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestText_InvalidBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.MinPartition = 10
	opts.MaxPartition = 5

	_, err := Text(Source{Text: strptr("hello")}, opts)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError for min above max, got %v", err)
	}
}

func TestText_StableIDsByDefault(t *testing.T) {
	elements, err := Text(Source{Text: strptr("Hello there!\n\nHello there!")}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	if elements[0].ID != elements[1].ID {
		t.Errorf("expected identical text to share an ID, got %q and %q", elements[0].ID, elements[1].ID)
	}
	if want := element.HashID("Hello there!"); elements[0].ID != want {
		t.Errorf("expected ID %q, got %q", want, elements[0].ID)
	}
}

func TestText_UniqueElementIDs(t *testing.T) {
	opts := DefaultOptions()
	opts.UniqueElementIDs = true

	elements, err := Text(Source{Text: strptr("Hello there!\n\nHello there!")}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	if elements[0].ID == elements[1].ID {
		t.Error("expected distinct IDs for identical text")
	}
	for i, el := range elements {
		if len(el.ID) != 36 || strings.Count(el.ID, "-") != 4 {
			t.Errorf("element[%d]: expected UUID-shaped ID, got %q", i, el.ID)
		}
	}
}

func TestText_IncludeMetadataFalse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake-text.txt")
	if err := os.WriteFile(path, []byte(fakeTextDocument), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	opts := DefaultOptions()
	opts.IncludeMetadata = false
	elements, err := Text(Source{Filename: path}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) == 0 {
		t.Fatal("expected elements, got none")
	}
	for i, el := range elements {
		if !el.Metadata.IsZero() {
			t.Errorf("element[%d]: expected zero metadata, got %+v", i, el.Metadata)
		}
		if el.ID == "" {
			t.Errorf("element[%d]: expected an ID even without metadata", i)
		}
	}
}
