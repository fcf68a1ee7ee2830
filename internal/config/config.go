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

// Package config holds the list of Zotero libraries to convert.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Library is a Zotero library feed and the identifier its output files
// are named after.
type Library struct {
	Name string
	URL  string
}

// Config is loaded once at startup and not modified afterwards.
type Config struct {
	// Libraries are converted in this order.
	Libraries []Library

	// Where .json and .rss files are written.
	OutputDir string

	// Minimum spacing between feed requests; zero means no pacing.
	FetchInterval Duration

	Database string

	Publish struct {
		Bucket     string
		Prefix     string
		LambdaFunc string
	}

	// Daemon settings
	Domain          string
	RefreshInterval Duration
}

// Duration is a time.Duration that is written as "15m" in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"15m\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func zoteroURL(collection string) string {
	return "https://api.zotero.org/groups/1329486/collections/" + collection + "/items/top?format=atom&content=json&sort=date&v=3"
}

// DefaultLibraries are the publication lists of the Jeltsch lab.
var DefaultLibraries = []Library{
	{Name: "Featured_Publications", URL: zoteroURL("7GCAFNUP")},
	{Name: "Original_Research", URL: zoteroURL("EBMDJFSM")},
	{Name: "Books_and_Book_Chapters", URL: zoteroURL("SSP45PWI")},
	{Name: "Conference_Proceedings", URL: zoteroURL("TR8JESPQ")},
	{Name: "Theses", URL: zoteroURL("NGHDVFGE")},
	{Name: "Reviews", URL: zoteroURL("KPE97PCJ")},
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Libraries: append([]Library(nil), DefaultLibraries...),
		OutputDir: ".",
	}
}

// Load reads a JSON configuration file.  Settings missing from the file
// keep their default values; a file without Libraries converts
// DefaultLibraries.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	cfg.Libraries = nil
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	if cfg.Libraries == nil {
		cfg.Libraries = append([]Library(nil), DefaultLibraries...)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks that library names are usable as file names and unique,
// and that every URL is absolute.
func (cfg *Config) Validate() error {
	seen := make(map[string]bool)
	for i, lib := range cfg.Libraries {
		if lib.Name == "" || lib.Name == "." || lib.Name == ".." || strings.ContainsAny(lib.Name, `/\`) || strings.HasPrefix(lib.Name, ".") {
			return fmt.Errorf("library %d has invalid name %q", i, lib.Name)
		}
		if seen[lib.Name] {
			return fmt.Errorf("library %q is listed more than once", lib.Name)
		}
		seen[lib.Name] = true
		u, err := url.Parse(lib.URL)
		if err != nil {
			return fmt.Errorf("library %q has invalid URL: %w", lib.Name, err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("library %q has relative URL %q", lib.Name, lib.URL)
		}
	}
	return nil
}

// Library returns the library with the given name.
func (cfg *Config) Library(name string) (Library, bool) {
	for _, lib := range cfg.Libraries {
		if lib.Name == name {
			return lib, true
		}
	}
	return Library{}, false
}
