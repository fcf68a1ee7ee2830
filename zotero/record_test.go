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

package zotero

import (
	"errors"
	"testing"
)

func TestParseDocument(t *testing.T) {
	doc := BuildDocument([]string{
		`{"itemType":"thesis","title":"T","url":"https://x","date":"2020-01-01","creators":[{"creatorType":"author","firstName":"A","lastName":"B"}],"thesisType":"PhD","university":"U","place":"P"}`,
		`{"itemType":"journalArticle","title":"J","creators":[{"creatorType":"author","name":"The Consortium"}],"volume":""}`,
	})
	records, err := ParseDocument(doc)
	if err != nil {
		t.Fatalf("ParseDocument: %s", err)
	}
	if len(records) != 2 {
		t.Fatalf("ParseDocument returned %d records, want 2", len(records))
	}

	thesis := records[0]
	if thesis.ItemType != Thesis {
		t.Errorf("records[0].ItemType = %q, want %q", thesis.ItemType, Thesis)
	}
	if got := Value(thesis.University); got != "U" {
		t.Errorf("records[0].University = %q, want %q", got, "U")
	}
	if thesis.Pages != nil {
		t.Errorf("records[0].Pages = %q, want absent", *thesis.Pages)
	}
	if got := thesis.Creators[0].DisplayName(); got != "A B" {
		t.Errorf("records[0].Creators[0].DisplayName() = %q, want %q", got, "A B")
	}

	article := records[1]
	if article.Volume == nil || *article.Volume != "" {
		t.Errorf("records[1].Volume should be present and empty")
	}
	if got := article.Creators[0].DisplayName(); got != "The Consortium" {
		t.Errorf("records[1].Creators[0].DisplayName() = %q, want %q", got, "The Consortium")
	}
}

func TestParseDocumentMalformed(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		index int
	}{
		{"not json", `{"publications": [`, -1},
		{"trailing comma", "{\n    \"publications\": [\n{},\n]\n}", -1},
		{"no publications key", `{"items": []}`, -1},
		{"null publications", `{"publications": null}`, -1},
		{"record not an object", `{"publications": [{"itemType":"thesis"}, 42]}`, 1},
		{"record without itemType", `{"publications": [{"title":"x"}]}`, 0},
	}
	for _, test := range tests {
		_, err := ParseDocument(test.doc)
		var malformed *MalformedFeedError
		if !errors.As(err, &malformed) {
			t.Errorf("%s: ParseDocument error = %v, want *MalformedFeedError", test.name, err)
			continue
		}
		if malformed.Index != test.index {
			t.Errorf("%s: MalformedFeedError.Index = %d, want %d", test.name, malformed.Index, test.index)
		}
	}
}

func TestDisplayName(t *testing.T) {
	first, last, name := "Ada", "Lovelace", "Analytical Engine Society"
	tests := []struct {
		creator Creator
		out     string
	}{
		{Creator{FirstName: &first, LastName: &last}, "Ada Lovelace"},
		{Creator{Name: &name}, "Analytical Engine Society"},
		{Creator{LastName: &last, Name: &name}, "Analytical Engine Society"},
		{Creator{LastName: &last}, ""},
	}
	for i, test := range tests {
		result := test.creator.DisplayName()
		if result != test.out {
			t.Errorf("#%d: DisplayName() = %q, want %q", i, result, test.out)
		}
	}
}
