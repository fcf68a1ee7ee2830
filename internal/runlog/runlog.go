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

// Package runlog records the outcome of every library conversion in
// PostgreSQL.  The log is only ever reported on; conversions never
// consult it.
package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/lib/pq"
	"src.agwa.name/go-dbutil"
)

//go:embed schema.sql
var schema string

// Run is the outcome of converting one library.
type Run struct {
	Library      string
	StartedAt    time.Time
	Duration     time.Duration
	Publications int // -1 if the feed could not be parsed
	JSONHash     string
	Warnings     []string
	Error        string
}

func (r *Run) Failed() bool {
	return r.Error != ""
}

// Log stores runs in the conversion table.
type Log struct {
	DB *sql.DB
}

// Init creates the conversion table if it does not exist.
func (l *Log) Init(ctx context.Context) error {
	if _, err := l.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error initializing run log schema: %w", err)
	}
	return nil
}

func (l *Log) Record(ctx context.Context, run *Run) error {
	var publications sql.NullInt32
	if run.Publications >= 0 {
		publications = sql.NullInt32{Valid: true, Int32: int32(run.Publications)}
	}
	warnings := run.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	_, err := l.DB.ExecContext(ctx,
		`INSERT INTO conversion (library, started_at, duration, publications, json_hash, warnings, error) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.Library,
		run.StartedAt,
		sqlInterval(run.Duration),
		publications,
		sqlString(run.JSONHash),
		pq.Array(warnings),
		sqlString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("error recording conversion of %s: %w", run.Library, err)
	}
	return nil
}

type runRow struct {
	Library         string         `sql:"library"`
	StartedAt       time.Time      `sql:"started_at"`
	DurationSeconds float64        `sql:"duration_seconds"`
	Publications    sql.NullInt32  `sql:"publications"`
	JSONHash        sql.NullString `sql:"json_hash"`
	Warnings        pq.StringArray `sql:"warnings"`
	Error           sql.NullString `sql:"error"`
}

func (row *runRow) run() Run {
	run := Run{
		Library:      row.Library,
		StartedAt:    row.StartedAt,
		Duration:     time.Duration(row.DurationSeconds * float64(time.Second)),
		Publications: -1,
		JSONHash:     row.JSONHash.String,
		Warnings:     []string(row.Warnings),
		Error:        row.Error.String,
	}
	if row.Publications.Valid {
		run.Publications = int(row.Publications.Int32)
	}
	return run
}

const selectRuns = `SELECT library, started_at, extract(epoch FROM duration)::float8 AS duration_seconds, publications, json_hash, warnings, error FROM conversion`

func (l *Log) load(ctx context.Context, query string, args ...any) ([]Run, error) {
	var rows []runRow
	if err := dbutil.QueryAll(ctx, l.DB, &rows, query, args...); err != nil {
		return nil, err
	}
	runs := make([]Run, len(rows))
	for i := range rows {
		runs[i] = rows[i].run()
	}
	return runs, nil
}

// LoadRecent returns the most recent runs, newest first.
func (l *Log) LoadRecent(ctx context.Context, limit int) ([]Run, error) {
	runs, err := l.load(ctx, selectRuns+` ORDER BY started_at DESC, conversion_id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error loading recent conversions: %w", err)
	}
	return runs, nil
}

// LoadFailures returns the most recent failed runs, newest first.
func (l *Log) LoadFailures(ctx context.Context, limit int) ([]Run, error) {
	runs, err := l.load(ctx, selectRuns+` WHERE error IS NOT NULL ORDER BY started_at DESC, conversion_id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error loading failed conversions: %w", err)
	}
	return runs, nil
}

func sqlString(s string) sql.NullString {
	return sql.NullString{Valid: s != "", String: s}
}

func sqlInterval(d time.Duration) string {
	return fmt.Sprintf("%d milliseconds", d.Milliseconds())
}
