package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"ingest-backend/internal/shared/storage/blob"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "report.md", want: "report.md"},
		{name: "simple prefix", prefix: "uploads", key: "report.md", want: "uploads/report.md"},
		{name: "prefix trailing slash", prefix: "uploads/", key: "report.md", want: "uploads/report.md"},
		{name: "prefix and key slashes", prefix: "/uploads/", key: "/report.md", want: "uploads/report.md"},
		{name: "nested prefix", prefix: "uploads/public", key: "cat.png", want: "uploads/public/cat.png"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestPutSendsPublicObject(t *testing.T) {
	fake := &fakePutter{}
	store := newStore(fake, Options{Region: "eu-west-1", Bucket: "files", Prefix: "/uploads/", PublicACL: true})

	desc, err := store.Put(context.Background(), "report.md", []byte("# Hello"), blob.PutOptions{Access: blob.AccessPublic, ContentType: "text"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	if aws.ToString(fake.input.Bucket) != "files" {
		t.Fatalf("unexpected bucket %q", aws.ToString(fake.input.Bucket))
	}
	if aws.ToString(fake.input.Key) != "uploads/report.md" {
		t.Fatalf("unexpected key %q", aws.ToString(fake.input.Key))
	}
	if aws.ToString(fake.input.ContentType) != "text" {
		t.Fatalf("unexpected content type %q", aws.ToString(fake.input.ContentType))
	}
	if fake.input.ACL != s3types.ObjectCannedACLPublicRead {
		t.Fatalf("expected public-read ACL, got %q", fake.input.ACL)
	}
	if fake.input.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 SSE, got %q", fake.input.ServerSideEncryption)
	}
	if !bytes.Equal(fake.body, []byte("# Hello")) {
		t.Fatalf("unexpected body %q", fake.body)
	}
	if desc.URL != "https://files.s3.eu-west-1.amazonaws.com/uploads/report.md" {
		t.Fatalf("unexpected url %q", desc.URL)
	}
	if desc.Pathname != "report.md" {
		t.Fatalf("unexpected pathname %q", desc.Pathname)
	}
}

func TestPutUsesKMSAndBaseURL(t *testing.T) {
	fake := &fakePutter{}
	store := newStore(fake, Options{Bucket: "files", KMSKeyID: "key-1", BaseURL: "https://cdn.example"})

	desc, err := store.Put(context.Background(), "cat.png", []byte("\x89PNG\r\n\x1a\n"), blob.PutOptions{Access: blob.AccessPublic})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if fake.input.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms {
		t.Fatalf("expected KMS SSE, got %q", fake.input.ServerSideEncryption)
	}
	if aws.ToString(fake.input.SSEKMSKeyId) != "key-1" {
		t.Fatalf("unexpected kms key %q", aws.ToString(fake.input.SSEKMSKeyId))
	}
	if fake.input.ACL != "" {
		t.Fatalf("expected no ACL, got %q", fake.input.ACL)
	}
	if aws.ToString(fake.input.ContentType) != "image/png" {
		t.Fatalf("expected inferred image/png, got %q", aws.ToString(fake.input.ContentType))
	}
	if desc.URL != "https://cdn.example/cat.png" {
		t.Fatalf("unexpected url %q", desc.URL)
	}
}

func TestPutWrapsClientError(t *testing.T) {
	boom := errors.New("access denied")
	store := newStore(&fakePutter{err: boom}, Options{Region: "us-east-1", Bucket: "files"})
	if _, err := store.Put(context.Background(), "a.png", []byte("x"), blob.PutOptions{Access: blob.AccessPublic}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}
