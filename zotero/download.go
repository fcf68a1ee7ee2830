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
	"context"
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
	"software.sslmate.com/src/zoterorss/internal/httpclient"
)

const DefaultUserAgent = "zoterorss"

// Fetcher downloads Zotero feeds.  The zero value uses
// http.DefaultClient and sends requests as fast as they are made.
type Fetcher struct {
	Client    *http.Client
	UserAgent string

	// If non-nil, Fetch waits on Limiter before every request.
	Limiter *rate.Limiter
}

// Fetch issues a single GET for feedURL and returns the response body.
// Failures are reported as *NetworkError; there are no retries.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (string, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return "", &NetworkError{URL: feedURL, Err: err}
		}
	}
	userAgent := f.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	body, err := httpclient.DownloadBytes(ctx, f.Client, feedURL, userAgent)
	if err != nil {
		return "", newNetworkError(feedURL, err)
	}
	return string(body), nil
}

func newNetworkError(feedURL string, err error) *NetworkError {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		return &NetworkError{URL: feedURL, StatusCode: statusErr.StatusCode, Err: statusErr}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return &NetworkError{URL: feedURL, Err: err}
}
