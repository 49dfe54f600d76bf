package partition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/docpart/internal/element"
)

func TestMarkdown_HeadingsListsAndProse(t *testing.T) {
	md := `# Getting Started

This guide explains how the importer works.

- install the binary
- run the importer

## Support

Questions go to the infra channel.
`
	elements, err := Markdown(Source{Text: strptr(md)}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkElements(t, elements, []element.Element{
		{Category: element.Title, Text: "Getting Started"},
		{Category: element.NarrativeText, Text: "This guide explains how the importer works."},
		{Category: element.ListItem, Text: "install the binary"},
		{Category: element.ListItem, Text: "run the importer"},
		{Category: element.Title, Text: "Support"},
		{Category: element.NarrativeText, Text: "Questions go to the infra channel."},
	})
}

func TestMarkdown_LinksLandInMetadata(t *testing.T) {
	md := "Read the [manual](https://example.com/manual) before deploying anything."
	elements, err := Markdown(Source{Text: strptr(md)}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	got := elements[0].Metadata
	if !equalStrings(got.LinkURLs, []string{"https://example.com/manual"}) {
		t.Errorf("expected link_urls %v, got %v", []string{"https://example.com/manual"}, got.LinkURLs)
	}
	if !equalStrings(got.LinkTexts, []string{"manual"}) {
		t.Errorf("expected link_texts %v, got %v", []string{"manual"}, got.LinkTexts)
	}
}

func TestMarkdown_EmphasisLandsInMetadata(t *testing.T) {
	elements, err := Markdown(Source{Text: strptr("The rollout is **fully automated** now.")}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	got := elements[0].Metadata
	if !equalStrings(got.EmphasizedTextContents, []string{"fully automated"}) {
		t.Errorf("expected emphasized contents %v, got %v", []string{"fully automated"}, got.EmphasizedTextContents)
	}
	if !equalStrings(got.EmphasizedTextTags, []string{"strong"}) {
		t.Errorf("expected emphasized tags %v, got %v", []string{"strong"}, got.EmphasizedTextTags)
	}
}

func TestMarkdown_EmptyInput(t *testing.T) {
	elements, err := Markdown(Source{Text: strptr("")}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 0 {
		t.Errorf("expected 0 elements, got %d", len(elements))
	}
}

func TestMarkdown_FromFileCapturesMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.md")
	if err := os.WriteFile(path, []byte("# Operations Guide"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	elements, err := Markdown(Source{Filename: path}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}
	if got := elements[0].Metadata.Filename; got != "guide.md" {
		t.Errorf("expected filename %q, got %q", "guide.md", got)
	}
	if got := elements[0].Metadata.Filetype; got != "text/markdown" {
		t.Errorf("expected filetype %q, got %q", "text/markdown", got)
	}
}
