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

// Package rss renders publication records as the RSS 2.0 dialect accepted
// by the university's Drupal feed importer.
//
// The importer is picky: it wants a UTF-8 BOM, the Dublin Core namespace
// on the root element, exactly four children per item in a fixed order,
// and values passed through without any further escaping.  Documents are
// therefore assembled from strings rather than with encoding/xml.
package rss

import (
	"io"
	"text/template"
	"time"
)

const (
	// PubDateFormat is the RFC 822 form used for the channel's pubDate.
	PubDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

	// ISODateFormat is the ISO 8601 form of the build time.
	ISODateFormat = "2006-01-02T15:04:05Z"
)

var feedTemplate = template.Must(template.New("feed").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<rss xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <channel>
    <title>{{.Title}}</title>
    <link>{{.Link}}</link>
    <description>{{.Description}}</description>
    <pubDate>{{.PubDate}}</pubDate>
{{range .Items}}{{.}}{{end}}  </channel>
</rss>
`))

// Channel is an RSS channel with already-rendered items.
type Channel struct {
	Title       string
	Link        string
	Description string
	Built       time.Time
	Items       []string
}

// NewChannel returns a channel with the fixed metadata the importer is
// configured for.
func NewChannel(built time.Time) *Channel {
	return &Channel{
		Title:       "Zotero Feed",
		Link:        "https://jeltsch.org",
		Description: "RSS Feed",
		Built:       built,
	}
}

func (ch *Channel) PubDate() string {
	return ch.Built.UTC().Format(PubDateFormat)
}

func (ch *Channel) BuildDateISO() string {
	return ch.Built.UTC().Format(ISODateFormat)
}

// WriteFeed writes the complete RSS document for ch to w.
func WriteFeed(w io.Writer, ch *Channel) error {
	return feedTemplate.Execute(w, ch)
}
