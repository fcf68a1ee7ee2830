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

// Package convert runs the Zotero to RSS conversion for a list of
// libraries.
package convert

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"software.sslmate.com/src/zoterorss/internal/config"
	"software.sslmate.com/src/zoterorss/internal/output"
	"software.sslmate.com/src/zoterorss/internal/publish"
	"software.sslmate.com/src/zoterorss/internal/rss"
	"software.sslmate.com/src/zoterorss/internal/runlog"
	"software.sslmate.com/src/zoterorss/zotero"
)

// Fetcher downloads the text of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (string, error)
}

// Publisher receives the generated files of a library.
type Publisher interface {
	Publish(ctx context.Context, library string, generated time.Time, dir string, files []publish.File) error
}

// Recorder stores the outcome of a conversion.
type Recorder interface {
	Record(ctx context.Context, run *runlog.Run) error
}

type Converter struct {
	Fetcher   Fetcher
	OutputDir string

	// Optional
	Now       func() time.Time
	Publisher Publisher
	Recorder  Recorder
}

// Result describes the conversion of one library.
type Result struct {
	Library      string
	StartedAt    time.Time
	Duration     time.Duration
	Publications int // -1 if the feed could not be parsed
	JSONHash     string
	Warnings     []string
	Err          error
}

func (r *Result) run() *runlog.Run {
	run := &runlog.Run{
		Library:      r.Library,
		StartedAt:    r.StartedAt,
		Duration:     r.Duration,
		Publications: r.Publications,
		JSONHash:     r.JSONHash,
		Warnings:     r.Warnings,
	}
	if r.Err != nil {
		run.Error = r.Err.Error()
	}
	return run
}

func (c *Converter) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Run converts the libraries one after another, in order.  A library that
// fails is logged and skipped; the remaining libraries are still converted.
// Run stops early only if ctx is canceled.
func (c *Converter) Run(ctx context.Context, libraries []config.Library) []*Result {
	results := make([]*Result, 0, len(libraries))
	for _, lib := range libraries {
		if ctx.Err() != nil {
			break
		}
		result := c.Convert(ctx, lib)
		if result.Err != nil {
			log.Printf("%s: conversion failed: %s", lib.Name, result.Err)
		} else {
			log.Printf("%s: wrote %d publications (%s)", lib.Name, result.Publications, result.JSONHash)
		}
		results = append(results, result)
	}
	return results
}

// Convert fetches one library, writes its .json and .rss files, publishes
// them and records the outcome.
func (c *Converter) Convert(ctx context.Context, lib config.Library) *Result {
	result := &Result{
		Library:      lib.Name,
		StartedAt:    c.now(),
		Publications: -1,
	}
	result.Err = c.convert(ctx, lib, result)
	result.Duration = c.now().Sub(result.StartedAt)

	if c.Recorder != nil {
		if err := c.Recorder.Record(ctx, result.run()); err != nil {
			log.Printf("%s: %s", lib.Name, err)
		}
	}
	return result
}

func (c *Converter) warn(result *Result, format string, args ...any) {
	warning := fmt.Sprintf(format, args...)
	log.Printf("%s: warning: %s", result.Library, warning)
	result.Warnings = append(result.Warnings, warning)
}

func (c *Converter) convert(ctx context.Context, lib config.Library, result *Result) error {
	text, err := c.Fetcher.Fetch(ctx, lib.URL)
	if err != nil {
		return err
	}

	payloads := zotero.Extract(text)
	if numEntries, err := zotero.CountEntries(text); err != nil {
		c.warn(result, "%s", err)
	} else if numEntries != len(payloads) {
		c.warn(result, "feed has %d entries but %d JSON payloads were found", numEntries, len(payloads))
	}

	document := zotero.BuildDocument(payloads)
	jsonName := lib.Name + ".json"
	if err := output.WriteFile(c.OutputDir, jsonName, []byte(document)); err != nil {
		return fmt.Errorf("error writing %s: %w", jsonName, err)
	}
	if hash, err := output.Hash(c.OutputDir, jsonName); err != nil {
		c.warn(result, "error hashing %s: %s", jsonName, err)
	} else {
		result.JSONHash = hash
	}

	records, err := zotero.ParseDocument(document)
	if err != nil {
		return err
	}
	result.Publications = len(records)

	channel := rss.NewChannel(c.now())
	for i := range records {
		item, missing := rss.RenderItem(&records[i])
		for _, fieldErr := range missing {
			c.warn(result, "%s", fieldErr)
		}
		channel.Items = append(channel.Items, item)
	}

	var feed strings.Builder
	if err := rss.WriteFeed(&feed, channel); err != nil {
		return fmt.Errorf("error rendering feed: %w", err)
	}
	rssName := lib.Name + ".rss"
	if err := output.WriteFile(c.OutputDir, rssName, []byte(feed.String())); err != nil {
		return fmt.Errorf("error writing %s: %w", rssName, err)
	}

	if c.Publisher != nil {
		files := []publish.File{
			{Name: jsonName, ContentType: publish.JSONContentType},
			{Name: rssName, ContentType: publish.RSSContentType},
		}
		if err := c.Publisher.Publish(ctx, lib.Name, channel.Built, c.OutputDir, files); err != nil {
			return fmt.Errorf("error publishing: %w", err)
		}
	}
	return nil
}

// Failed returns the results that have an error.
func Failed(results []*Result) []*Result {
	var failed []*Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
