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

// Package atom encodes the Atom feeds that report on conversions.
package atom

import (
	"encoding/xml"
	"time"
)

const Namespace = "http://www.w3.org/2005/Atom"

// Feed represents an Atom feed.
type Feed struct {
	XMLName xml.Name `xml:"feed"`
	Xmlns   string   `xml:"xmlns,attr"`
	ID      string   `xml:"id"`
	Title   string   `xml:"title"`
	Updated string   `xml:"updated"`
	Author  Person   `xml:"author"`
	Link    Link     `xml:"link"`
	Entries []Entry  `xml:"entry"`
}

// Entry is an item within a Feed.
type Entry struct {
	Title   string  `xml:"title"`
	ID      string  `xml:"id"`
	Updated string  `xml:"updated"`
	Link    *Link   `xml:"link,omitempty"`
	Content Content `xml:"content"`
}

// Content is the body of an Entry.
type Content struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type Person struct {
	Name string `xml:"name"`
}

type Link struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Href string `xml:"href,attr"`
}

// NewFeed returns a feed whose ID is also its self link.
func NewFeed(feedURL string, title string, author string) *Feed {
	return &Feed{
		Xmlns:  Namespace,
		ID:     feedURL,
		Title:  title,
		Author: Person{Name: author},
		Link:   Link{Rel: "self", Href: feedURL},
	}
}

// Timestamp formats t the way feed and entry updated times are written.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Marshal encodes the feed as an indented XML document.
func (feed *Feed) Marshal() ([]byte, error) {
	data, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
