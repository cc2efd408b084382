// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Store implements BlobStore on top of an S3-compatible bucket.
// It is configured for path-style access (required by CEPH/Hetzner/MinIO).
type S3Store struct {
	s3     *s3.Client
	bucket string
}

// NewS3 creates an S3 blob store with static credentials and path-style
// addressing. Returns (nil, nil) if endpoint or credentials are empty,
// allowing the app to start with local storage instead.
func NewS3(endpoint, region, accessKey, secretKey, bucket string) (*S3Store, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	// Strip trailing slash from endpoint for consistent URL building.
	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3Store{
		s3:     s3Client,
		bucket: bucket,
	}, nil
}

// Put stores a blob under the given filename.
func (c *S3Store) Put(ctx context.Context, filename string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(filename),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", c.bucket, filename, err)
	}
	return nil
}

// Read retrieves a blob's contents.
func (c *S3Store) Read(ctx context.Context, filename string) ([]byte, error) {
	output, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 read %s/%s: %w", c.bucket, filename, err)
	}
	defer output.Body.Close()
	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body %s/%s: %w", c.bucket, filename, err)
	}
	return data, nil
}

// Delete removes a blob. Deleting a missing key is not an error in S3.
func (c *S3Store) Delete(ctx context.Context, filename string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, filename, err)
	}
	return nil
}

// Exists reports whether a blob is present under the given filename.
func (c *S3Store) Exists(ctx context.Context, filename string) (bool, error) {
	_, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		// HeadObject errors are sometimes surfaced as bare API errors
		// with a 404 code rather than the typed NotFound.
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %s/%s: %w", c.bucket, filename, err)
	}
	return true, nil
}
