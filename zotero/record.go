// Copyright (C) 2025 Opsmate, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a
// copy of this software and associated documentation files (the "Software"),
// to deal in the Software without restriction, including without limitation
// the rights to use, copy, modify, merge, publish, distribute, sublicense,
// and/or sell copies of the Software, and to permit persons to whom the
// Software is furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included
// in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL
// THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// Except as contained in this notice, the name(s) of the above copyright
// holders shall not be used in advertising or otherwise to promote the
// sale, use or other dealings in this Software without prior written
// authorization.

// Package zotero reads publication records out of Zotero Atom feeds
// that carry JSON content (format=atom&content=json).
package zotero

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item types that have a dedicated rendering rule.
const (
	JournalArticle  = "journalArticle"
	BookSection     = "bookSection"
	Thesis          = "thesis"
	ConferencePaper = "conferencePaper"
)

const (
	CreatorAuthor = "author"
	CreatorEditor = "editor"
)

// Record is one bibliographic entry.  Apart from ItemType, every field
// may be absent from the feed, so optional fields are pointers and a nil
// pointer means the key was missing.
type Record struct {
	ItemType string    `json:"itemType"`
	Title    *string   `json:"title"`
	URL      *string   `json:"url"`
	Date     *string   `json:"date"`
	Creators []Creator `json:"creators"`

	JournalAbbreviation *string `json:"journalAbbreviation"`
	PublicationTitle    *string `json:"publicationTitle"`
	Volume              *string `json:"volume"`
	Pages               *string `json:"pages"`
	BookTitle           *string `json:"bookTitle"`
	Publisher           *string `json:"publisher"`
	ThesisType          *string `json:"thesisType"`
	University          *string `json:"university"`
	Place               *string `json:"place"`
	ProceedingsTitle    *string `json:"proceedingsTitle"`
	ConferenceName      *string `json:"conferenceName"`
}

// TitleOrEmpty returns the title, or "" if the record has none.
func (r *Record) TitleOrEmpty() string {
	return Value(r.Title)
}

// Creator is an author, editor or other contributor.  Either FirstName
// and LastName or Name is populated.
type Creator struct {
	CreatorType string  `json:"creatorType"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Name        *string `json:"name"`
}

// DisplayName returns "First Last" when both name parts are present and
// the single-field name otherwise.
func (c *Creator) DisplayName() string {
	if c.FirstName != nil && c.LastName != nil {
		return *c.FirstName + " " + *c.LastName
	}
	return Value(c.Name)
}

func (c *Creator) IsEditor() bool {
	return c.CreatorType == CreatorEditor
}

// Value dereferences an optional field.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type document struct {
	Publications *[]json.RawMessage `json:"publications"`
}

// ParseDocument decodes an aggregate document as produced by
// BuildDocument.  Records are returned in document order.
func ParseDocument(doc string) ([]Record, error) {
	var d document
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return nil, &MalformedFeedError{Index: -1, Err: err}
	}
	if d.Publications == nil {
		return nil, &MalformedFeedError{Index: -1, Err: fmt.Errorf("document lacks %q key", "publications")}
	}

	records := make([]Record, len(*d.Publications))
	for i, raw := range *d.Publications {
		if err := json.Unmarshal(raw, &records[i]); err != nil {
			return nil, &MalformedFeedError{Index: i, Err: err}
		}
		if !hasKey(raw, "itemType") {
			return nil, &MalformedFeedError{Index: i, Err: fmt.Errorf("record lacks %q key", "itemType")}
		}
	}
	return records, nil
}

func hasKey(raw json.RawMessage, key string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	value, ok := fields[key]
	return ok && !bytes.Equal(value, []byte("null"))
}
