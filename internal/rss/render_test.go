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

package rss

import (
	"errors"
	"strings"
	"testing"

	"software.sslmate.com/src/zoterorss/zotero"
)

func str(s string) *string { return &s }

func person(creatorType, first, last string) zotero.Creator {
	return zotero.Creator{CreatorType: creatorType, FirstName: str(first), LastName: str(last)}
}

func institution(creatorType, name string) zotero.Creator {
	return zotero.Creator{CreatorType: creatorType, Name: str(name)}
}

func TestCreators(t *testing.T) {
	authors, editors, n := Creators([]zotero.Creator{
		person("author", "First1", "Last1"),
		person("editor", "Jane", "Doe"),
		person("author", "First2", "Last2"),
		institution("contributor", "Lab"),
		institution("editor", "Committee"),
	})
	if authors != "First1 Last1, First2 Last2, Lab" {
		t.Errorf("authors = %q", authors)
	}
	if editors != "Jane Doe, Committee" {
		t.Errorf("editors = %q", editors)
	}
	if n != 2 {
		t.Errorf("numEditors = %d, want 2", n)
	}
}

func TestEditorClause(t *testing.T) {
	tests := []struct {
		editors string
		n       int
		out     string
	}{
		{"", 0, "; "},
		{"Jane Doe", 1, "Jane Doe (ed); "},
		{"Jane Doe, John Roe", 2, "Jane Doe, John Roe (eds.); "},
		{"A, B, C", 3, "A, B, C (eds.); "},
	}
	for _, test := range tests {
		result := EditorClause(test.editors, test.n)
		if result != test.out {
			t.Errorf("EditorClause(%q, %d) = %q, want %q", test.editors, test.n, result, test.out)
		}
	}
}

func TestDescription(t *testing.T) {
	twoAuthors := []zotero.Creator{person("author", "First1", "Last1"), person("author", "First2", "Last2")}
	tests := []struct {
		name string
		rec  zotero.Record
		out  string
	}{
		{
			name: "journal article with abbreviation",
			rec: zotero.Record{
				ItemType:            zotero.JournalArticle,
				Creators:            twoAuthors,
				JournalAbbreviation: str("Nat. Med."),
				PublicationTitle:    str("Nature Medicine"),
				Volume:              str("12"),
				Pages:               str("1-10"),
			},
			out: "First1 Last1, First2 Last2; &lt;i&gt;Nat. Med.&lt;/i&gt;, 12, 1-10",
		},
		{
			name: "journal article without abbreviation",
			rec: zotero.Record{
				ItemType:         zotero.JournalArticle,
				Creators:         twoAuthors,
				PublicationTitle: str("Nature Medicine"),
				Volume:           str("12"),
				Pages:            str("1-10"),
			},
			out: "First1 Last1, First2 Last2; &lt;i&gt;Nature Medicine&lt;/i&gt;, 12, 1-10",
		},
		{
			name: "journal article with empty abbreviation",
			rec: zotero.Record{
				ItemType:            zotero.JournalArticle,
				Creators:            twoAuthors,
				JournalAbbreviation: str(""),
				PublicationTitle:    str("Nature Medicine"),
				Volume:              str("12"),
				Pages:               str("1-10"),
			},
			out: "First1 Last1, First2 Last2; &lt;i&gt;Nature Medicine&lt;/i&gt;, 12, 1-10",
		},
		{
			name: "book section with one editor",
			rec: zotero.Record{
				ItemType:  zotero.BookSection,
				Creators:  []zotero.Creator{person("author", "A", "B"), person("editor", "Jane", "Doe")},
				BookTitle: str("Handbook"),
				Publisher: str("Springer"),
				Pages:     str("5-9"),
			},
			out: "A B; In: Handbook; Jane Doe (ed); Springer, 5-9",
		},
		{
			name: "book section with two editors",
			rec: zotero.Record{
				ItemType:  zotero.BookSection,
				Creators:  []zotero.Creator{person("editor", "Jane", "Doe"), person("author", "A", "B"), person("editor", "John", "Roe")},
				BookTitle: str("Handbook"),
				Publisher: str("Springer"),
				Pages:     str("5-9"),
			},
			out: "A B; In: Handbook; Jane Doe, John Roe (eds.); Springer, 5-9",
		},
		{
			name: "book section without editors",
			rec: zotero.Record{
				ItemType:  zotero.BookSection,
				Creators:  []zotero.Creator{person("author", "A", "B")},
				BookTitle: str("Handbook"),
				Publisher: str("Springer"),
				Pages:     str("5-9"),
			},
			out: "A B; In: Handbook; ; Springer, 5-9",
		},
		{
			name: "thesis",
			rec: zotero.Record{
				ItemType:   zotero.Thesis,
				Creators:   []zotero.Creator{person("author", "A", "B")},
				ThesisType: str("PhD"),
				University: str("U"),
				Place:      str("P"),
			},
			out: "A B; PhD; U, P",
		},
		{
			name: "conference paper",
			rec: zotero.Record{
				ItemType:         zotero.ConferencePaper,
				Creators:         []zotero.Creator{institution("author", "Consortium")},
				ProceedingsTitle: str("Proc. X"),
				ConferenceName:   str("X 2020"),
				Place:            str("Helsinki"),
			},
			out: "Consortium; &lt;i&gt;Proc. X&lt;/i&gt;; X 2020, Helsinki",
		},
		{
			name: "other item type",
			rec:  zotero.Record{ItemType: "book", Creators: twoAuthors, Publisher: str("P")},
			out:  "",
		},
		{
			name: "no creators",
			rec:  zotero.Record{ItemType: zotero.Thesis, ThesisType: str("MSc"), University: str("U"), Place: str("P")},
			out:  "; MSc; U, P",
		},
	}
	for _, test := range tests {
		result, err := Description(&test.rec)
		if err != nil {
			t.Errorf("%s: Description: unexpected error: %s", test.name, err)
			continue
		}
		if result != test.out {
			t.Errorf("%s: Description = %q, want %q", test.name, result, test.out)
		}
	}
}

func TestDescriptionMissingField(t *testing.T) {
	tests := []struct {
		rec   zotero.Record
		field string
	}{
		{zotero.Record{ItemType: zotero.JournalArticle, Volume: str("1"), Pages: str("2")}, "publicationTitle"},
		{zotero.Record{ItemType: zotero.JournalArticle, PublicationTitle: str("J"), Pages: str("2")}, "volume"},
		{zotero.Record{ItemType: zotero.BookSection, BookTitle: str("B"), Pages: str("2")}, "publisher"},
		{zotero.Record{ItemType: zotero.Thesis, ThesisType: str("PhD"), University: str("U")}, "place"},
		{zotero.Record{ItemType: zotero.ConferencePaper, ConferenceName: str("C"), Place: str("P")}, "proceedingsTitle"},
	}
	for _, test := range tests {
		result, err := Description(&test.rec)
		var fieldErr *zotero.FieldMissingError
		if !errors.As(err, &fieldErr) {
			t.Errorf("%s: Description error = %v, want *zotero.FieldMissingError", test.rec.ItemType, err)
			continue
		}
		if fieldErr.Field != test.field {
			t.Errorf("%s: missing field = %q, want %q", test.rec.ItemType, fieldErr.Field, test.field)
		}
		if result != "" {
			t.Errorf("%s: Description = %q, want empty", test.rec.ItemType, result)
		}
	}
}

func TestRenderItem(t *testing.T) {
	doc := zotero.BuildDocument([]string{`{"itemType":"thesis","title":"T","url":"https://x","date":"2020-01-01","creators":[{"creatorType":"author","firstName":"A","lastName":"B"}],"thesisType":"PhD","university":"U","place":"P"}`})
	records, err := zotero.ParseDocument(doc)
	if err != nil {
		t.Fatalf("ParseDocument: %s", err)
	}
	item, missing := RenderItem(&records[0])
	if len(missing) != 0 {
		t.Errorf("RenderItem reported missing fields: %v", missing)
	}
	want := "    <item>\n" +
		"      <title>T</title>\n" +
		"      <link>https://x</link>\n" +
		"      <pubDate>2020-01-01</pubDate>\n" +
		"      <description>A B; PhD; U, P</description>\n" +
		"    </item>\n"
	if item != want {
		t.Errorf("RenderItem = %q, want %q", item, want)
	}
}

func TestRenderItemPassesValuesThrough(t *testing.T) {
	rec := zotero.Record{
		ItemType: "webpage",
		Title:    str("Caf&eacute; <b>&</b>"),
		URL:      str("https://example.com/?a=1&b=2"),
		Date:     str("May 2021"),
	}
	item, _ := RenderItem(&rec)
	for _, want := range []string{
		"<title>Caf&eacute; <b>&</b></title>",
		"<link>https://example.com/?a=1&b=2</link>",
		"<pubDate>May 2021</pubDate>",
		"<description></description>",
	} {
		if !strings.Contains(item, want) {
			t.Errorf("RenderItem output lacks %q:\n%s", want, item)
		}
	}
}

func TestRenderItemMissingFields(t *testing.T) {
	rec := zotero.Record{
		ItemType:   zotero.Thesis,
		Title:      str("T"),
		ThesisType: str("PhD"),
	}
	item, missing := RenderItem(&rec)
	var fields []string
	for _, m := range missing {
		fields = append(fields, m.Field)
	}
	if got := strings.Join(fields, ","); got != "url,date,university" {
		t.Errorf("missing fields = %q, want %q", got, "url,date,university")
	}
	if !strings.Contains(item, "<description></description>") {
		t.Errorf("item with missing description field should have an empty description:\n%s", item)
	}
}
