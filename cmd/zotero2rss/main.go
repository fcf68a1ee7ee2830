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

// zotero2rss converts Zotero group-library feeds into RSS feeds for the
// Drupal feed importer.  Without flags it converts the default libraries
// into the current directory.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	zconfig "software.sslmate.com/src/zoterorss/internal/config"
	"software.sslmate.com/src/zoterorss/internal/convert"
	"software.sslmate.com/src/zoterorss/internal/publish"
	"software.sslmate.com/src/zoterorss/internal/runlog"
	"software.sslmate.com/src/zoterorss/zotero"
)

func main() {
	var flags struct {
		config        string
		out           string
		db            string
		s3bucket      string
		s3prefix      string
		lambdaFunc    string
		fetchInterval time.Duration
	}
	flag.StringVar(&flags.config, "config", "", "Path to configuration file (default: built-in library list)")
	flag.StringVar(&flags.out, "out", "", "Output directory (default: from config, or current directory)")
	flag.StringVar(&flags.db, "db", "", "Database address for the run log")
	flag.StringVar(&flags.s3bucket, "s3-bucket", "", "S3 bucket to publish feeds to")
	flag.StringVar(&flags.s3prefix, "s3-prefix", "", "Key prefix within the S3 bucket")
	flag.StringVar(&flags.lambdaFunc, "lambda-func", "", "Lambda function to invoke after publishing")
	flag.DurationVar(&flags.fetchInterval, "fetch-interval", 0, "Minimum time between feed requests")
	flag.Parse()

	cfg := zconfig.Default()
	if flags.config != "" {
		var err error
		if cfg, err = zconfig.Load(flags.config); err != nil {
			log.Fatal(err)
		}
	}
	if flags.out != "" {
		cfg.OutputDir = flags.out
	}
	if flags.db != "" {
		cfg.Database = flags.db
	}
	if flags.s3bucket != "" {
		cfg.Publish.Bucket = flags.s3bucket
	}
	if flags.s3prefix != "" {
		cfg.Publish.Prefix = flags.s3prefix
	}
	if flags.lambdaFunc != "" {
		cfg.Publish.LambdaFunc = flags.lambdaFunc
	}
	if flags.fetchInterval != 0 {
		cfg.FetchInterval = zconfig.Duration(flags.fetchInterval)
	}

	ctx := context.Background()
	converter, closeFunc, err := newConverter(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeFunc()

	results := converter.Run(ctx, cfg.Libraries)
	if failed := convert.Failed(results); len(failed) > 0 {
		log.Printf("%d of %d libraries failed", len(failed), len(results))
		closeFunc()
		os.Exit(1)
	}
}

// newConverter wires up a Converter from cfg.  The returned function
// releases the database connection, if any.
func newConverter(ctx context.Context, cfg *zconfig.Config) (*convert.Converter, func(), error) {
	fetcher := &zotero.Fetcher{}
	if cfg.FetchInterval > 0 {
		fetcher.Limiter = rate.NewLimiter(rate.Every(time.Duration(cfg.FetchInterval)), 1)
	}
	converter := &convert.Converter{
		Fetcher:   fetcher,
		OutputDir: cfg.OutputDir,
	}
	closeFunc := func() {}

	if cfg.Publish.Bucket != "" {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		converter.Publisher = &publish.Publisher{
			AWSConfig:  awsCfg,
			Bucket:     cfg.Publish.Bucket,
			Prefix:     cfg.Publish.Prefix,
			LambdaFunc: cfg.Publish.LambdaFunc,
		}
	}

	if cfg.Database != "" {
		db, err := sql.Open("postgres", cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		runLog := &runlog.Log{DB: db}
		if err := runLog.Init(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		converter.Recorder = runLog
		closeFunc = func() { db.Close() }
	}
	return converter, closeFunc, nil
}
