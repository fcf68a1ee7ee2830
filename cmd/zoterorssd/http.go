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

package main

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	zconfig "software.sslmate.com/src/zoterorss/internal/config"
	"software.sslmate.com/src/zoterorss/internal/publish"
	"software.sslmate.com/src/zoterorss/internal/runlog"
	"src.agwa.name/go-util/logfilter"
)

// feedFileHandler serves the generated files of configured libraries
// from the output directory, and nothing else.
type feedFileHandler struct {
	cfg *zconfig.Config
}

func (h *feedFileHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	file := req.PathValue("file")
	var library, contentType string
	switch {
	case strings.HasSuffix(file, ".rss"):
		library, contentType = strings.TrimSuffix(file, ".rss"), publish.RSSContentType
	case strings.HasSuffix(file, ".json"):
		library, contentType = strings.TrimSuffix(file, ".json"), publish.JSONContentType
	default:
		http.NotFound(w, req)
		return
	}
	if _, ok := h.cfg.Library(library); !ok {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	http.ServeFile(w, req, filepath.Join(h.cfg.OutputDir, file))
}

func newMux(cfg *zconfig.Config, runLog *runlog.Log) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /feeds/{file}", &feedFileHandler{cfg: cfg})
	if runLog != nil {
		runs := &runlog.Handler{Store: runLog, Domain: cfg.Domain}
		mux.HandleFunc("GET /failures.atom", runs.ServeFailuresAtom)
		mux.HandleFunc("GET /runs.csv", runs.ServeRunsCSV)
	}
	return mux
}

func newHTTPServer(cfg *zconfig.Config, runLog *runlog.Log) *http.Server {
	return &http.Server{
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  3 * time.Second,
		Handler:      newMux(cfg, runLog),
		ErrorLog:     logfilter.New(log.Default(), logfilter.HTTPServerErrors),
	}
}
