package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ingest-backend/internal/shared/storage/blob"
)

// Store implements blob.Store on the local filesystem. Objects are published
// under baseURL, which the API server maps back onto baseDir.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a local store rooted at baseDir.
func New(baseDir, baseURL string) *Store {
	return &Store{baseDir: baseDir, baseURL: baseURL}
}

// Dir returns the directory objects are written to.
func (s *Store) Dir() string {
	return s.baseDir
}

// Put writes data to baseDir/key, replacing any existing object.
func (s *Store) Put(ctx context.Context, key string, data []byte, opts blob.PutOptions) (blob.Descriptor, error) {
	if err := blob.CheckOptions(opts); err != nil {
		return blob.Descriptor{}, err
	}
	clean, err := blob.CleanKey(key)
	if err != nil {
		return blob.Descriptor{}, err
	}
	if err := ctx.Err(); err != nil {
		return blob.Descriptor{}, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return blob.Descriptor{}, fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return blob.Descriptor{}, fmt.Errorf("write blob key=%s: %w", clean, err)
	}

	return blob.Describe(s.baseURL, clean, blob.ContentTypeFor(data, opts.ContentType)), nil
}

var _ blob.Store = (*Store)(nil)
