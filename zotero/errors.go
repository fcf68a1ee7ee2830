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

import "fmt"

// NetworkError is returned when a feed could not be downloaded, either
// because the transport failed or because the server did not answer 2xx.
type NetworkError struct {
	URL        string
	StatusCode int // 0 if no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedFeedError is returned when the aggregate document is not valid
// JSON, lacks the publications key, or contains an unusable record.
type MalformedFeedError struct {
	Index int // position of the offending record, or -1 for the whole document
	Err   error
}

func (e *MalformedFeedError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed feed document: %s", e.Err)
	}
	return fmt.Sprintf("malformed feed document: publication %d: %s", e.Index, e.Err)
}

func (e *MalformedFeedError) Unwrap() error { return e.Err }

// FieldMissingError is returned when a record lacks a field that the
// rendering rule for its item type needs.
type FieldMissingError struct {
	ItemType string
	Field    string
	Title    string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("%s %q lacks %s", e.ItemType, e.Title, e.Field)
}
