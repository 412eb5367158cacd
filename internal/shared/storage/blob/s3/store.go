package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"ingest-backend/internal/shared/storage/blob"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures the S3 store.
type Options struct {
	Region    string
	Bucket    string
	Prefix    string
	KMSKeyID  string
	PublicACL bool
	// BaseURL overrides the virtual-hosted bucket URL, e.g. for a CDN.
	BaseURL string
}

// Store implements blob.Store using Amazon S3.
type Store struct {
	client    putObjectAPI
	bucket    string
	prefix    string
	kmsKeyID  string
	publicACL bool
	baseURL   string
}

// New creates an S3-backed store using the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if opts.Region == "" {
		opts.Region = cfg.Region
	}

	return newStore(s3.NewFromConfig(cfg), opts), nil
}

func newStore(client putObjectAPI, opts Options) *Store {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	prefix := normalizePrefix(opts.Prefix)
	if prefix != "" {
		baseURL = blob.ObjectURL(baseURL, prefix)
	}
	return &Store{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    prefix,
		kmsKeyID:  strings.TrimSpace(opts.KMSKeyID),
		publicACL: opts.PublicACL,
		baseURL:   baseURL,
	}
}

// Put uploads data under the prefixed key.
func (s *Store) Put(ctx context.Context, key string, data []byte, opts blob.PutOptions) (blob.Descriptor, error) {
	if err := blob.CheckOptions(opts); err != nil {
		return blob.Descriptor{}, err
	}
	clean, err := blob.CleanKey(key)
	if err != nil {
		return blob.Descriptor{}, err
	}

	contentType := blob.ContentTypeFor(data, opts.ContentType)
	objectKey := applyPrefix(s.prefix, clean)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if s.publicACL {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return blob.Descriptor{}, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}

	return blob.Describe(s.baseURL, clean, contentType), nil
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ blob.Store = (*Store)(nil)
