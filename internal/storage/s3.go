// Package storage is the S3 side of the service: BEL documents for
// async compiles come from the bucket, export artifacts go back into
// it, and s3:// definition locations resolve through it.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/graphbio/bel/internal/util"
)

// Client wraps the S3 API with the service's default bucket. A nil
// Client is a valid no-S3 deployment; callers check before use.
type Client struct {
	api    *s3.Client
	bucket string
}

// NewClient builds a client from AWS_REGION, AWS_ENDPOINT,
// AWS_ACCESS_KEY, AWS_SECRET_KEY, and AWS_BUCKET. Returns nil when no
// bucket is configured.
func NewClient(ctx context.Context) *Client {
	bucket := util.GetEnv("AWS_BUCKET")
	if bucket == "" {
		return nil
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(util.GetEnv("AWS_REGION")),
		config.WithBaseEndpoint(util.GetEnv("AWS_ENDPOINT")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			util.GetEnv("AWS_ACCESS_KEY"),
			util.GetEnv("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil
	}

	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// MinIO and other S3-compatible stores need path-style keys.
		o.UsePathStyle = true
	})
	return &Client{api: api, bucket: bucket}
}

// GetDocument reads a BEL source document from the default bucket.
func (c *Client) GetDocument(ctx context.Context, key string) ([]byte, error) {
	return c.get(ctx, c.bucket, key)
}

// Fetch reads an object from an explicit bucket. It satisfies
// resolve.ObjectFetcher, so s3:// definition locations name their own
// bucket instead of the service default.
func (c *Client) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	return c.get(ctx, bucket, key)
}

func (c *Client) get(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}

// PutArtifact uploads an export or snapshot under the given key.
func (c *Client) PutArtifact(ctx context.Context, key, contentType string, body []byte) error {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// DeletePrefix removes every object under prefix, batching deletes
// page by page. Used when a graph and its artifacts are deleted.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	}

	for {
		listOutput, err := c.api.ListObjectsV2(ctx, listInput)
		if err != nil {
			return fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		if len(listOutput.Contents) == 0 {
			return nil
		}

		var identifiers []types.ObjectIdentifier
		for _, object := range listOutput.Contents {
			identifiers = append(identifiers, types.ObjectIdentifier{Key: object.Key})
		}
		_, err = c.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(c.bucket),
			Delete: &types.Delete{
				Objects: identifiers,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects under %s: %w", prefix, err)
		}

		if listOutput.IsTruncated != nil && *listOutput.IsTruncated {
			listInput.ContinuationToken = listOutput.NextContinuationToken
		} else {
			return nil
		}
	}
}

// ListPrefix returns the keys under prefix in an explicit bucket. The
// CLI uses it to expand an s3:// source into the documents to compile.
func (c *Client) ListPrefix(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}

	for {
		listOutput, err := c.api.ListObjectsV2(ctx, listInput)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		for _, object := range listOutput.Contents {
			if object.Key != nil {
				keys = append(keys, *object.Key)
			}
		}

		if listOutput.IsTruncated != nil && *listOutput.IsTruncated {
			listInput.ContinuationToken = listOutput.NextContinuationToken
		} else {
			return keys, nil
		}
	}
}

// PresignDownload returns a time-limited link for an artifact. When
// AWS_PUBLIC_ENDPOINT is set, the URL is signed against it so the
// signature matches the Host header browsers will send.
func (c *Client) PresignDownload(ctx context.Context, key string) (string, error) {
	client := c.api
	prefix := ""

	if publicEndpoint := util.GetEnv("AWS_PUBLIC_ENDPOINT"); publicEndpoint != "" {
		publicURL, err := url.Parse(publicEndpoint)
		if err != nil || publicURL.Scheme == "" || publicURL.Host == "" {
			return "", fmt.Errorf("invalid AWS_PUBLIC_ENDPOINT: %s", publicEndpoint)
		}
		prefix = strings.TrimSuffix(publicURL.Path, "/")

		client = s3.NewFromConfig(
			aws.Config{
				Region:      c.api.Options().Region,
				Credentials: c.api.Options().Credentials,
				HTTPClient:  c.api.Options().HTTPClient,
			},
			func(o *s3.Options) {
				o.BaseEndpoint = aws.String(publicURL.Scheme + "://" + publicURL.Host)
				o.UsePathStyle = true
			},
		)
	}

	presigner := s3.NewPresignClient(client)
	out, err := presigner.PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(15*time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	if prefix != "" {
		signedURL, err := url.Parse(out.URL)
		if err != nil {
			return "", fmt.Errorf("failed to parse presigned url: %w", err)
		}
		signedURL.Path = prefix + signedURL.Path
		return signedURL.String(), nil
	}
	return out.URL, nil
}
