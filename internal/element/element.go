// Package element defines the typed units a partitioned document is made of.
package element

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Category is the semantic type of an element.
type Category int

const (
	UncategorizedText Category = iota
	Title
	NarrativeText
	ListItem
	Address
	PageBreak
	Table
)

// String returns the wire name of the category.
func (c Category) String() string {
	switch c {
	case Title:
		return "Title"
	case NarrativeText:
		return "NarrativeText"
	case ListItem:
		return "ListItem"
	case Address:
		return "Address"
	case PageBreak:
		return "PageBreak"
	case Table:
		return "Table"
	default:
		return "UncategorizedText"
	}
}

// Element is one classified unit of document content. Elements are
// constructed fully populated and not mutated afterwards.
type Element struct {
	Category Category
	Text     string
	ID       string
	Metadata Metadata
}

// New creates an element with the default identifier: a stable
// content hash, so identical text yields the same ID across runs.
func New(category Category, text string) Element {
	return Element{Category: category, Text: text, ID: HashID(text)}
}

// NewUnique creates an element with a random identifier, unique even
// for repeated identical text.
func NewUnique(category Category, text string) Element {
	return Element{Category: category, Text: text, ID: uuid.NewString()}
}

// HashID returns the deterministic identifier for text: lowercase hex
// of its SHA-256 digest, truncated to 32 characters.
func HashID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum[:16])
}

// Equal reports content equality: category and text only. Identifiers
// and metadata are provenance, not content.
func (e Element) Equal(other Element) bool {
	return e.Category == other.Category && e.Text == other.Text
}

type elementJSON struct {
	Type      string   `json:"type"`
	ElementID string   `json:"element_id"`
	Text      string   `json:"text"`
	Metadata  Metadata `json:"metadata"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(elementJSON{
		Type:      e.Category.String(),
		ElementID: e.ID,
		Text:      e.Text,
		Metadata:  e.Metadata,
	})
}
