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

// zoterorssd keeps the RSS feeds of the configured Zotero libraries up to
// date and serves them, along with a log of recent conversions.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"src.agwa.name/go-listener"
	_ "src.agwa.name/go-listener/tls"

	zconfig "software.sslmate.com/src/zoterorss/internal/config"
	"software.sslmate.com/src/zoterorss/internal/convert"
	"software.sslmate.com/src/zoterorss/internal/publish"
	"software.sslmate.com/src/zoterorss/internal/runlog"
	"software.sslmate.com/src/zoterorss/zotero"
)

const (
	defaultRefreshInterval = 6 * time.Hour
	dbChannelName          = `zoterorss`
)

var dbListener *pq.Listener

type signal chan struct{}

func makeSignal() signal {
	return make(chan struct{}, 1)
}

func (s signal) raise() {
	select {
	case s <- struct{}{}:
	default:
	}
}

func regenerate(ctx context.Context, converter *convert.Converter, libraries []zconfig.Library, interval time.Duration, wakeup <-chan struct{}) error {
	for {
		results := converter.Run(ctx, libraries)
		if failed := convert.Failed(results); len(failed) > 0 {
			log.Printf("%d of %d libraries failed; next attempt in %s", len(failed), len(results), interval)
		}
		if err := sleep(ctx, interval, wakeup); err != nil {
			return err
		}
	}
}

// handleNotifications raises regenerateSignal whenever something is
// published on the database channel, e.g. with NOTIFY zoterorss.
func handleNotifications(ctx context.Context, regenerateSignal signal) error {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// ping server to force a reconnection if connection is broken
			dbListener.Ping()
		case n := <-dbListener.Notify:
			if n == nil {
				// Connection was re-established; anything we missed will
				// be picked up on the normal schedule.
				continue
			}
			log.Printf("regeneration requested via database notification %q", n.Extra)
			regenerateSignal.raise()
		}
	}
}

func main() {
	var flags struct {
		config string
		listen []string
	}
	flag.StringVar(&flags.config, "config", "", "Path to configuration file")
	flag.Func("listen", "Socket for HTTP server, in go-listener syntax (repeatable)", func(arg string) error {
		flags.listen = append(flags.listen, arg)
		return nil
	})
	flag.Parse()

	if flags.config == "" {
		log.Fatal("-config flag not provided")
	}
	cfg, err := zconfig.Load(flags.config)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Domain == "" {
		cfg.Domain = "localhost"
	}
	refreshInterval := time.Duration(cfg.RefreshInterval)
	if refreshInterval <= 0 {
		refreshInterval = defaultRefreshInterval
	}

	fetcher := &zotero.Fetcher{}
	if cfg.FetchInterval > 0 {
		fetcher.Limiter = rate.NewLimiter(rate.Every(time.Duration(cfg.FetchInterval)), 1)
	}
	converter := &convert.Converter{
		Fetcher:   fetcher,
		OutputDir: cfg.OutputDir,
	}

	if cfg.Publish.Bucket != "" {
		awsCfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		converter.Publisher = &publish.Publisher{
			AWSConfig:  awsCfg,
			Bucket:     cfg.Publish.Bucket,
			Prefix:     cfg.Publish.Prefix,
			LambdaFunc: cfg.Publish.LambdaFunc,
		}
	}

	var runLog *runlog.Log
	if cfg.Database != "" {
		db, err := sql.Open("postgres", cfg.Database)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		runLog = &runlog.Log{DB: db}
		if err := runLog.Init(context.Background()); err != nil {
			log.Fatal(err)
		}
		converter.Recorder = runLog

		dbListener = pq.NewListener(cfg.Database, 5*time.Second, 2*time.Minute, nil)
		if err := dbListener.Listen(dbChannelName); err != nil {
			log.Fatal(err)
		}
	}

	httpListeners, err := listener.OpenAll(flags.listen)
	if err != nil {
		log.Fatal(err)
	}
	defer listener.CloseAll(httpListeners)

	httpServer := newHTTPServer(cfg, runLog)

	regenerateSignal := makeSignal()
	group, ctx := errgroup.WithContext(context.Background())
	group.Go(func() error {
		return regenerate(ctx, converter, cfg.Libraries, refreshInterval, regenerateSignal)
	})
	if dbListener != nil {
		group.Go(func() error {
			return handleNotifications(ctx, regenerateSignal)
		})
	}
	for _, l := range httpListeners {
		go func() {
			log.Fatal(httpServer.Serve(l))
		}()
	}
	log.Fatal(group.Wait())
}

func sleep(ctx context.Context, duration time.Duration, wakeup <-chan struct{}) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-wakeup:
		return nil
	}
}
