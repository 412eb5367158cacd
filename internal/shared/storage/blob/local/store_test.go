package local

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ingest-backend/internal/shared/storage/blob"
)

func TestPutWritesBytesAndDescribes(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, "http://localhost:8080/blobs")
	payload := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDRpixels")

	desc, err := store.Put(context.Background(), "cat.photo.png", payload, blob.PutOptions{Access: blob.AccessPublic})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "cat.photo.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("stored bytes differ from payload")
	}
	if desc.URL != "http://localhost:8080/blobs/cat.photo.png" {
		t.Fatalf("unexpected url %q", desc.URL)
	}
	if desc.ContentType != "image/png" {
		t.Fatalf("expected inferred image/png, got %q", desc.ContentType)
	}
}

func TestPutKeepsExplicitContentType(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080/blobs")
	desc, err := store.Put(context.Background(), "report.md", []byte("# Hello"), blob.PutOptions{Access: blob.AccessPublic, ContentType: "text"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if desc.ContentType != "text" {
		t.Fatalf("expected content type text, got %q", desc.ContentType)
	}
}

func TestPutRejectsTraversalAndPrivate(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, "root"), "http://localhost:8080/blobs")

	if _, err := store.Put(context.Background(), "../escape.png", []byte("x"), blob.PutOptions{Access: blob.AccessPublic}); !errors.Is(err, blob.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.png")); !os.IsNotExist(err) {
		t.Fatalf("traversal key must not be written")
	}
	if _, err := store.Put(context.Background(), "a.png", []byte("x"), blob.PutOptions{Access: "private"}); !errors.Is(err, blob.ErrUnsupportedAccess) {
		t.Fatalf("expected ErrUnsupportedAccess, got %v", err)
	}
}

func TestPutHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := New(t.TempDir(), "http://localhost:8080/blobs")
	if _, err := store.Put(ctx, "a.png", []byte("x"), blob.PutOptions{Access: blob.AccessPublic}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
