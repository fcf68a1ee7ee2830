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
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

const (
	contentOpen  = `<content zapi:type="json">`
	contentClose = "</content>\n  </entry>"
)

// Extract returns the JSON payload of every entry in a Zotero Atom feed,
// in feed order.  A payload is the text strictly between an opening
// content marker and the following closing marker.  If the feed is
// truncated after an opening marker, the remainder of the text is the
// last payload.
func Extract(text string) []string {
	var payloads []string
	for {
		start := strings.Index(text, contentOpen)
		if start == -1 {
			return payloads
		}
		text = text[start+len(contentOpen):]

		end := strings.Index(text, contentClose)
		if end == -1 {
			return append(payloads, text)
		}
		payloads = append(payloads, text[:end])
		text = text[end+len(contentClose):]
	}
}

// BuildDocument concatenates payloads into an aggregate document of the
// form {"publications": [...]}.  The result is valid JSON for any number
// of payloads, provided each payload is itself valid JSON.
func BuildDocument(payloads []string) string {
	var b strings.Builder
	b.WriteString("{\n    \"publications\": [\n")
	b.WriteString(strings.Join(payloads, ",\n"))
	if len(payloads) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("]\n}")
	return b.String()
}

// CountEntries parses the Atom envelope and returns how many entries it
// has.  It is only used to cross-check Extract.
func CountEntries(text string) (int, error) {
	feed, err := gofeed.NewParser().ParseString(text)
	if err != nil {
		return 0, fmt.Errorf("error parsing feed envelope: %w", err)
	}
	return len(feed.Items), nil
}
