// Package blob stores listing pictures in an S3-compatible bucket.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store puts and removes objects and knows the public URL of each key.
type Store interface {
	Put(ctx context.Context, key string, content []byte, contentType string) (publicURL string, err error)
	Delete(ctx context.Context, key string) error
}

// Options configures a MinioStore.
type Options struct {
	Endpoint  string
	UseSSL    bool
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is the base of the URLs handed to clients. Defaults to Endpoint.
	PublicURL string
}

// MinioStore is the minio-go implementation of Store. The bucket is created
// on first use and made publicly readable so picture URLs work without signing.
type MinioStore struct {
	bucket    string
	publicURL string
	client    *minio.Client
	logger    *slog.Logger

	bucketOnce sync.Once
	bucketErr  error
}

// NewMinioStore validates opts and builds the client. It does not contact
// the server.
func NewMinioStore(opts Options, logger *slog.Logger) (*MinioStore, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("blob.NewMinioStore: endpoint is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("blob.NewMinioStore: bucket is required")
	}

	client, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blob.NewMinioStore: %w", err)
	}

	base := strings.TrimSpace(opts.PublicURL)
	if base == "" {
		base = endpoint
		if !strings.Contains(base, "://") {
			scheme := "http"
			if opts.UseSSL {
				scheme = "https"
			}
			base = scheme + "://" + base
		}
	}

	return &MinioStore{
		bucket:    bucket,
		publicURL: strings.TrimRight(base, "/"),
		client:    client,
		logger:    logger,
	}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("blob.MinioStore.Put: key is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("blob.MinioStore.Put: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("blob.MinioStore.Put: %w", err)
	}

	u := ObjectURL(s.publicURL, s.bucket, key)
	s.logger.Debug("blob stored", "bucket", s.bucket, "key", key, "bytes", len(content))
	return u, nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("blob.MinioStore.Delete: %w", err)
	}
	return nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketErr = fmt.Errorf("check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			s.bucketErr = fmt.Errorf("create bucket: %w", err)
			return
		}
		if err := s.client.SetBucketPolicy(ctx, s.bucket, PublicReadPolicy(s.bucket)); err != nil {
			s.bucketErr = fmt.Errorf("set bucket policy: %w", err)
		}
	})
	return s.bucketErr
}

// PublicReadPolicy allows anonymous GetObject on every key of bucket.
func PublicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// ObjectURL joins base, bucket and key into a path-style object URL.
func ObjectURL(base, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.TrimLeft(key, "/"))
}

// hostOf strips the scheme minio.New does not accept.
func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ Store = (*MinioStore)(nil)
