package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ingest-backend/internal/shared/storage/blob"
)

// Options configures the MinIO store.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// BaseURL overrides the path-style endpoint URL objects are published under.
	BaseURL string
}

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Store implements blob.Store on a MinIO (or any S3-compatible) server.
type Store struct {
	client  objectPutter
	bucket  string
	baseURL string
}

// New connects to MinIO and makes sure the bucket exists. A bucket created
// here gets an anonymous read policy so published URLs resolve.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("minio endpoint and credentials are required")
	}
	if opts.Bucket == "" {
		opts.Bucket = "uploads"
	}

	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", opts.Bucket, err)
		}
		if err := cli.SetBucketPolicy(ctx, opts.Bucket, publicReadPolicy(opts.Bucket)); err != nil {
			return nil, fmt.Errorf("set bucket policy %s: %w", opts.Bucket, err)
		}
	}

	return newStore(cli, opts), nil
}

func newStore(client objectPutter, opts Options) *Store {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = endpointURL(opts.Endpoint, opts.UseSSL, opts.Bucket)
	}
	return &Store{client: client, bucket: opts.Bucket, baseURL: baseURL}
}

// Put uploads data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte, opts blob.PutOptions) (blob.Descriptor, error) {
	if err := blob.CheckOptions(opts); err != nil {
		return blob.Descriptor{}, err
	}
	clean, err := blob.CleanKey(key)
	if err != nil {
		return blob.Descriptor{}, err
	}

	contentType := blob.ContentTypeFor(data, opts.ContentType)
	_, err = s.client.PutObject(ctx, s.bucket, clean, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return blob.Descriptor{}, fmt.Errorf("minio put object bucket=%s key=%s: %w", s.bucket, clean, err)
	}

	return blob.Describe(s.baseURL, clean, contentType), nil
}

func endpointURL(endpoint string, useSSL bool, bucket string) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	host := strings.TrimRight(endpoint, "/")
	return fmt.Sprintf("%s://%s/%s", scheme, host, bucket)
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

var _ blob.Store = (*Store)(nil)
