package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores binary content in an S3-compatible bucket and returns a
// public URL. MinIO in local setups, any S3 endpoint in production.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}

// Options configures the bucket client. PublicBaseURL is the address photo
// URLs are built from; it defaults to the endpoint when empty.
type Options struct {
	Endpoint      string
	UseSSL        bool
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	Logger        *slog.Logger
}

// Client wraps a MinIO/S3 client. The bucket is created lazily on first
// upload and made publicly readable.
type Client struct {
	opts       Options
	client     *minio.Client
	bucketOnce sync.Once
	bucketErr  error
}

func NewClient(opts Options) (*Client, error) {
	opts.Endpoint = strings.TrimSpace(opts.Endpoint)
	opts.Bucket = strings.TrimSpace(opts.Bucket)
	if opts.Endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if opts.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	if opts.PublicBaseURL = strings.TrimSpace(opts.PublicBaseURL); opts.PublicBaseURL == "" {
		opts.PublicBaseURL = opts.Endpoint
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")

	mc, err := minio.New(hostOf(opts.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey), ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &Client{opts: opts, client: mc}, nil
}

func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.client.PutObject(ctx, c.opts.Bucket, key, reader, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", c.opts.PublicBaseURL, c.opts.Bucket, key)
	if c.opts.Logger != nil {
		c.opts.Logger.Info("photo upload completed", "bucket", c.opts.Bucket, "key", key, "url", publicURL)
	}
	return publicURL, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketOnce.Do(func() {
		exists, err := c.client.BucketExists(ctx, c.opts.Bucket)
		if err != nil {
			c.bucketErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.client.MakeBucket(ctx, c.opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			c.bucketErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, c.opts.Bucket)
		if err := c.client.SetBucketPolicy(ctx, c.opts.Bucket, policy); err != nil {
			c.bucketErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return c.bucketErr
}

// NoopUploader fails fast when S3 is unavailable.
type NoopUploader struct{}

func (NoopUploader) Upload(_ context.Context, _ string, _ io.Reader, _ string) (string, error) {
	return "", errors.New("s3 uploader is not configured")
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ Uploader = (*Client)(nil)
var _ Uploader = NoopUploader{}
