// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Backend stores files in a single public bucket on an S3-compatible
// service. Path-style addressing is used so CEPH and MinIO style endpoints
// work without bucket subdomains.
type S3Backend struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for public files
}

// NewS3Backend creates an S3 backend with static credentials.
func NewS3Backend(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*S3Backend, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("s3 backend: endpoint and credentials are required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 backend: bucket is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3Backend{
		s3:        client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Put uploads an object with public-read ACL so it can be served directly.
func (b *S3Backend) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := b.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// Delete removes an object. S3 reports success for keys that do not exist.
func (b *S3Backend) Delete(ctx context.Context, key string) error {
	_, err := b.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// URL returns the public URL for key. Uses the configured public URL if
// set, otherwise builds a path-style URL.
func (b *S3Backend) URL(key string) string {
	if b.publicURL != "" {
		return b.publicURL + "/" + key
	}
	return b.endpoint + "/" + b.bucket + "/" + key
}
