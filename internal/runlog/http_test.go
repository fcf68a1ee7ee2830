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

package runlog

import (
	"context"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"software.sslmate.com/src/zoterorss/internal/atom"
)

type fakeStore struct {
	runs []Run
	err  error
}

func (s *fakeStore) LoadRecent(ctx context.Context, limit int) ([]Run, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.runs, nil
}

func (s *fakeStore) LoadFailures(ctx context.Context, limit int) ([]Run, error) {
	if s.err != nil {
		return nil, s.err
	}
	var failures []Run
	for _, run := range s.runs {
		if run.Failed() {
			failures = append(failures, run)
		}
	}
	return failures, nil
}

var testRuns = []Run{
	{
		Library:      "Theses",
		StartedAt:    time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
		Publications: 3,
		JSONHash:     "h1:abc=",
		Warnings:     []string{`thesis "T" lacks place`},
	},
	{
		Library:      "Reviews",
		StartedAt:    time.Date(2026, time.October, 18, 11, 0, 0, 0, time.UTC),
		Duration:     200 * time.Millisecond,
		Publications: -1,
		Error:        "fetching https://api.zotero.org/x: 503 Service Unavailable",
	},
}

func TestServeFailuresAtom(t *testing.T) {
	h := &Handler{Store: &fakeStore{runs: testRuns}, Domain: "feeds.example.org"}
	rec := httptest.NewRecorder()
	h.ServeFailuresAtom(rec, httptest.NewRequest(http.MethodGet, "/failures.atom", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var feed atom.Feed
	if err := xml.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatalf("response is not an Atom feed: %s", err)
	}
	if feed.ID != "https://feeds.example.org/failures.atom" {
		t.Errorf("feed ID = %q", feed.ID)
	}
	if len(feed.Entries) != 1 {
		t.Fatalf("feed has %d entries, want 1", len(feed.Entries))
	}
	entry := feed.Entries[0]
	if entry.Title != "Conversion of Reviews failed" {
		t.Errorf("entry title = %q", entry.Title)
	}
	if entry.Link == nil || entry.Link.Href != "https://feeds.example.org/feeds/Reviews.rss" {
		t.Errorf("entry link = %v", entry.Link)
	}
	if feed.Updated != "2026-10-18T11:00:00Z" {
		t.Errorf("feed updated = %q", feed.Updated)
	}
}

func TestServeFailuresAtomDatabaseError(t *testing.T) {
	h := &Handler{Store: &fakeStore{err: errors.New("connection refused")}, Domain: "feeds.example.org"}
	rec := httptest.NewRecorder()
	h.ServeFailuresAtom(rec, httptest.NewRequest(http.MethodGet, "/failures.atom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestServeRunsCSV(t *testing.T) {
	h := &Handler{Store: &fakeStore{runs: testRuns}, Domain: "feeds.example.org"}
	rec := httptest.NewRecorder()
	h.ServeRunsCSV(rec, httptest.NewRequest(http.MethodGet, "/runs.csv", nil))

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("response is not CSV: %s", err)
	}
	if len(records) != 3 {
		t.Fatalf("CSV has %d records, want 3", len(records))
	}
	if got := records[1]; got[0] != "Theses" || got[2] != "1.5s" || got[3] != "3" || got[4] != "h1:abc=" {
		t.Errorf("first row = %q", got)
	}
	if got := records[2]; got[3] != "" || got[6] == "" {
		t.Errorf("second row = %q", got)
	}
}
