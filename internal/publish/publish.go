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

// Package publish copies generated feeds to S3 and notifies a Lambda
// function that new feeds are available.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	JSONContentType = "application/json; charset=utf-8"
	RSSContentType  = "application/rss+xml; charset=utf-8"
)

// File is a generated file to be published.
type File struct {
	Name        string
	ContentType string
}

// Event is the payload sent to the Lambda function after a library's
// files have been uploaded.
type Event struct {
	Library   string   `json:"library"`
	Generated string   `json:"generated"`
	Bucket    string   `json:"bucket"`
	Objects   []Object `json:"objects"`
}

type Object struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
}

type Publisher struct {
	AWSConfig aws.Config
	Bucket    string
	Prefix    string

	// If non-empty, invoked with an Event after every successful upload.
	LambdaFunc string
}

func (p *Publisher) newS3Client() *s3.Client {
	return s3.NewFromConfig(p.AWSConfig, func(opts *s3.Options) {
		opts.EndpointOptions.UseDualStackEndpoint = aws.DualStackEndpointStateEnabled
		opts.DisableLogOutputChecksumValidationSkipped = true
	})
}

func (p *Publisher) newLambdaClient() *lambda.Client {
	return lambda.NewFromConfig(p.AWSConfig)
}

// ObjectKey returns the key under which a file is stored in the bucket.
func (p *Publisher) ObjectKey(name string) string {
	return path.Join(p.Prefix, name)
}

// Publish uploads files from dir and, if configured, invokes the Lambda
// function.
func (p *Publisher) Publish(ctx context.Context, library string, generated time.Time, dir string, files []File) error {
	client := p.newS3Client()
	event := &Event{
		Library:   library,
		Generated: generated.UTC().Format("2006-01-02T15:04:05Z"),
		Bucket:    p.Bucket,
	}
	for _, file := range files {
		key := p.ObjectKey(file.Name)
		if err := p.putObject(ctx, client, key, filepath.Join(dir, file.Name), file.ContentType); err != nil {
			return fmt.Errorf("error uploading %s to s3://%s/%s: %w", file.Name, p.Bucket, key, err)
		}
		event.Objects = append(event.Objects, Object{Key: key, ContentType: file.ContentType})
	}
	if p.LambdaFunc == "" {
		return nil
	}
	return p.notify(ctx, event)
}

func (p *Publisher) putObject(ctx context.Context, client *s3.Client, key string, filename string, contentType string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=300, must-revalidate"),
	})
	return err
}

func (p *Publisher) notify(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error encoding lambda payload: %w", err)
	}
	log.Printf("%s: invoking lambda %s", event.Library, p.LambdaFunc)
	result, err := p.newLambdaClient().Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(p.LambdaFunc),
		Payload:      payload,
	})
	if err != nil {
		return fmt.Errorf("error invoking lambda %s: %w", p.LambdaFunc, err)
	}
	if result.FunctionError != nil {
		return fmt.Errorf("lambda %s failed: %s: %s", p.LambdaFunc, *result.FunctionError, result.Payload)
	}
	return nil
}
