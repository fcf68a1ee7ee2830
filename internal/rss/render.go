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

	"software.sslmate.com/src/zoterorss/zotero"
)

// The description field of the importer shows markup literally, so italics
// are emitted pre-escaped.
const (
	italicOpen  = "&lt;i&gt;"
	italicClose = "&lt;/i&gt;"
)

// Creators splits creators into a comma-separated author list and a
// comma-separated editor list, preserving order.  Every creator that is
// not an editor counts as an author.
func Creators(creators []zotero.Creator) (authors string, editors string, numEditors int) {
	var authorNames, editorNames []string
	for i := range creators {
		if creators[i].IsEditor() {
			editorNames = append(editorNames, creators[i].DisplayName())
		} else {
			authorNames = append(authorNames, creators[i].DisplayName())
		}
	}
	return strings.Join(authorNames, ", "), strings.Join(editorNames, ", "), len(editorNames)
}

// EditorClause appends the editor suffix to an editor list: "(ed)" for a
// single editor, "(eds.)" for several, and nothing but the separator when
// there are none.
func EditorClause(editors string, numEditors int) string {
	switch {
	case numEditors == 0:
		return editors + "; "
	case numEditors == 1:
		return editors + " (ed); "
	default:
		return editors + " (eds.); "
	}
}

type fieldGetter struct {
	rec *zotero.Record
	err *zotero.FieldMissingError
}

// get returns the field's value, or "" after remembering the first
// missing field.
func (g *fieldGetter) get(name string, value *string) string {
	if value == nil {
		if g.err == nil {
			g.err = &zotero.FieldMissingError{ItemType: g.rec.ItemType, Field: name, Title: g.rec.TitleOrEmpty()}
		}
		return ""
	}
	return *value
}

func journalName(rec *zotero.Record) (string, *string) {
	if rec.JournalAbbreviation != nil && *rec.JournalAbbreviation != "" {
		return "journalAbbreviation", rec.JournalAbbreviation
	}
	return "publicationTitle", rec.PublicationTitle
}

// Description composes the description of a record according to its item
// type.  Item types without a rule get an empty description.  If a field
// required by the rule is absent, Description returns "" and a
// *zotero.FieldMissingError.
func Description(rec *zotero.Record) (string, error) {
	authors, editors, numEditors := Creators(rec.Creators)
	g := &fieldGetter{rec: rec}

	var description string
	switch rec.ItemType {
	case zotero.JournalArticle:
		journal := g.get(journalName(rec))
		volume := g.get("volume", rec.Volume)
		pages := g.get("pages", rec.Pages)
		description = authors + "; " + italicOpen + journal + italicClose + ", " + volume + ", " + pages
	case zotero.BookSection:
		bookTitle := g.get("bookTitle", rec.BookTitle)
		publisher := g.get("publisher", rec.Publisher)
		pages := g.get("pages", rec.Pages)
		description = authors + "; In: " + bookTitle + "; " + EditorClause(editors, numEditors) + publisher + ", " + pages
	case zotero.Thesis:
		thesisType := g.get("thesisType", rec.ThesisType)
		university := g.get("university", rec.University)
		place := g.get("place", rec.Place)
		description = authors + "; " + thesisType + "; " + university + ", " + place
	case zotero.ConferencePaper:
		proceedings := g.get("proceedingsTitle", rec.ProceedingsTitle)
		conference := g.get("conferenceName", rec.ConferenceName)
		place := g.get("place", rec.Place)
		description = authors + "; " + italicOpen + proceedings + italicClose + "; " + conference + ", " + place
	default:
		return "", nil
	}

	if g.err != nil {
		return "", g.err
	}
	return description, nil
}

// RenderItem renders rec as an RSS item.  Values are copied verbatim:
// the importer expects whatever escaping the feed already carries.  A
// record with missing fields is still rendered, with those fields empty
// (and an empty description if a description field is missing); the
// missing fields are returned so the caller can report them.
func RenderItem(rec *zotero.Record) (string, []*zotero.FieldMissingError) {
	var missing []*zotero.FieldMissingError
	for _, field := range []struct {
		name  string
		value *string
	}{{"title", rec.Title}, {"url", rec.URL}, {"date", rec.Date}} {
		if field.value == nil {
			missing = append(missing, &zotero.FieldMissingError{ItemType: rec.ItemType, Field: field.name, Title: rec.TitleOrEmpty()})
		}
	}

	description, err := Description(rec)
	var fieldErr *zotero.FieldMissingError
	if errors.As(err, &fieldErr) {
		missing = append(missing, fieldErr)
	}

	var b strings.Builder
	b.WriteString("    <item>\n")
	b.WriteString("      <title>" + zotero.Value(rec.Title) + "</title>\n")
	b.WriteString("      <link>" + zotero.Value(rec.URL) + "</link>\n")
	b.WriteString("      <pubDate>" + zotero.Value(rec.Date) + "</pubDate>\n")
	b.WriteString("      <description>" + description + "</description>\n")
	b.WriteString("    </item>\n")
	return b.String(), missing
}
