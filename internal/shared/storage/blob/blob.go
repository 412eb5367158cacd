package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Access controls who can read a stored object. Only public objects exist today.
type Access string

const AccessPublic Access = "public"

var (
	ErrInvalidKey        = errors.New("invalid blob key")
	ErrUnsupportedAccess = errors.New("unsupported blob access")
)

// PutOptions configures a single Put. An empty ContentType lets the store
// infer it from the payload.
type PutOptions struct {
	Access      Access
	ContentType string
}

// Descriptor describes a stored object. It is returned to uploaders verbatim.
type Descriptor struct {
	URL                string `json:"url"`
	DownloadURL        string `json:"downloadUrl"`
	Pathname           string `json:"pathname"`
	ContentType        string `json:"contentType"`
	ContentDisposition string `json:"contentDisposition"`
}

// Store persists objects and reports where they can be read back.
type Store interface {
	Put(ctx context.Context, key string, data []byte, opts PutOptions) (Descriptor, error)
}

// CheckOptions rejects options no backend can honour.
func CheckOptions(opts PutOptions) error {
	if opts.Access != AccessPublic {
		return fmt.Errorf("%w: %q", ErrUnsupportedAccess, opts.Access)
	}
	return nil
}

// CleanKey normalizes a key to a relative slash path and refuses keys that
// would escape the store root.
func CleanKey(key string) (string, error) {
	trimmed := strings.TrimLeft(strings.TrimSpace(key), "/")
	if trimmed == "" {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	clean := path.Clean(trimmed)
	if clean == "." {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// ContentTypeFor returns explicit when set, otherwise sniffs data.
func ContentTypeFor(data []byte, explicit string) string {
	if ct := strings.TrimSpace(explicit); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}

// Describe builds the descriptor for key published under baseURL.
func Describe(baseURL, key, contentType string) Descriptor {
	objectURL := ObjectURL(baseURL, key)
	return Descriptor{
		URL:                objectURL,
		DownloadURL:        objectURL + "?download=1",
		Pathname:           key,
		ContentType:        contentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	}
}

// ObjectURL joins baseURL and an escaped key.
func ObjectURL(baseURL, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.Join(segments, "/")
}
