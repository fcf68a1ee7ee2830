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
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"software.sslmate.com/src/zoterorss/internal/atom"
)

const (
	maxFeedEntries = 100
	maxCSVRows     = 1000
)

// Store is the part of Log that the HTTP handlers need.
type Store interface {
	LoadRecent(ctx context.Context, limit int) ([]Run, error)
	LoadFailures(ctx context.Context, limit int) ([]Run, error)
}

var _ Store = (*Log)(nil)

// Handler serves the run log over HTTP.
type Handler struct {
	Store Store

	// Domain is the public host name, used to build feed and entry IDs.
	Domain string
}

func (h *Handler) baseURL() string {
	return "https://" + h.Domain
}

// ServeFailuresAtom publishes failed conversions as an Atom feed.
func (h *Handler) ServeFailuresAtom(w http.ResponseWriter, req *http.Request) {
	runs, err := h.Store.LoadFailures(req.Context(), maxFeedEntries)
	if err != nil {
		log.Printf("error loading failed conversions: %s", err)
		http.Error(w, "Internal Database Error", http.StatusInternalServerError)
		return
	}

	feedURL := h.baseURL() + "/failures.atom"
	feed := atom.NewFeed(feedURL, "Zotero Feed Conversion Failures", "zoterorss on "+h.Domain)
	if len(runs) > 0 {
		feed.Updated = atom.Timestamp(runs[0].StartedAt)
	} else {
		feed.Updated = atom.Timestamp(time.Now())
	}
	for _, run := range runs {
		feed.Entries = append(feed.Entries, atom.Entry{
			Title:   fmt.Sprintf("Conversion of %s failed", run.Library),
			ID:      fmt.Sprintf("%s#%s-%d", feedURL, run.Library, run.StartedAt.UnixNano()),
			Updated: atom.Timestamp(run.StartedAt),
			Link:    &atom.Link{Rel: "related", Href: h.baseURL() + "/feeds/" + run.Library + ".rss"},
			Content: atom.Content{Type: "text", Body: fmt.Sprintf("Library: %s\nStarted: %s\nError: %s\n", run.Library, run.StartedAt.UTC().Format(time.RFC3339), run.Error)},
		})
	}

	data, err := feed.Marshal()
	if err != nil {
		log.Printf("error encoding Atom feed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ServeRunsCSV lists recent conversions as CSV.
func (h *Handler) ServeRunsCSV(w http.ResponseWriter, req *http.Request) {
	runs, err := h.Store.LoadRecent(req.Context(), maxCSVRows)
	if err != nil {
		log.Printf("error loading recent conversions: %s", err)
		http.Error(w, "Internal Database Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=UTF-8; header=present")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	cw.Write([]string{"Library", "Started", "Duration", "Publications", "JSON Hash", "Warnings", "Error"})
	for _, run := range runs {
		publications := ""
		if run.Publications >= 0 {
			publications = strconv.Itoa(run.Publications)
		}
		cw.Write([]string{
			run.Library,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.Duration.String(),
			publications,
			run.JSONHash,
			strings.Join(run.Warnings, "\n"),
			run.Error,
		})
	}
	cw.Flush()
}
