package element

// Metadata is the provenance envelope attached to an element. Every
// field is optional; absent link/emphasis lists stay nil so "checked,
// found none" and "not applicable" serialize the same way the sources
// report them.
type Metadata struct {
	Filename      string `json:"filename,omitempty"`
	FileDirectory string `json:"file_directory,omitempty"`
	Filetype      string `json:"filetype,omitempty"`
	LastModified  string `json:"last_modified,omitempty"`
	PageNumber    int    `json:"page_number,omitempty"`

	LinkURLs  []string `json:"link_urls,omitempty"`
	LinkTexts []string `json:"link_texts,omitempty"`

	EmphasizedTextContents []string `json:"emphasized_text_contents,omitempty"`
	EmphasizedTextTags     []string `json:"emphasized_text_tags,omitempty"`

	AncestorTags []string `json:"ancestor_tags,omitempty"`

	// TextAsHTML carries an HTML rendering for table elements.
	TextAsHTML string `json:"text_as_html,omitempty"`

	RegexMetadata map[string][]Match `json:"regex_metadata,omitempty"`
}

// Match records one regex hit inside an element's text. Offsets are
// rune positions, not bytes.
type Match struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// IsZero reports whether the envelope carries no fields at all.
func (m Metadata) IsZero() bool {
	return m.Filename == "" && m.FileDirectory == "" && m.Filetype == "" &&
		m.LastModified == "" && m.PageNumber == 0 &&
		m.LinkURLs == nil && m.LinkTexts == nil &&
		m.EmphasizedTextContents == nil && m.EmphasizedTextTags == nil &&
		m.AncestorTags == nil && m.TextAsHTML == "" && m.RegexMetadata == nil
}
