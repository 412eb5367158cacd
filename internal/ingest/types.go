// Package ingest validates uploaded files and routes them to blob storage,
// converting documents to Markdown on the way.
package ingest

import "strings"

// Kind is the routing decision for an accepted upload.
type Kind int

const (
	KindImage Kind = iota + 1
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// TypeEntry maps a file extension to its canonical MIME type.
type TypeEntry struct {
	Ext  string
	MIME string
}

// AllowedTypes is an ordered, read-only extension to MIME table. The zero
// value allows nothing.
type AllowedTypes struct {
	entries []TypeEntry
	mimes   map[string]struct{}
	images  map[string]struct{}
}

var defaultEntries = []TypeEntry{
	{Ext: "jpg", MIME: "image/jpeg"},
	{Ext: "jpeg", MIME: "image/jpeg"},
	{Ext: "png", MIME: "image/png"},
	{Ext: "doc", MIME: "application/msword"},
	{Ext: "docx", MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	{Ext: "ppt", MIME: "application/vnd.ms-powerpoint"},
	{Ext: "pptx", MIME: "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	{Ext: "pdf", MIME: "application/pdf"},
	{Ext: "xls", MIME: "application/vnd.ms-excel"},
	{Ext: "xlsx", MIME: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	{Ext: "odt", MIME: "application/vnd.oasis.opendocument.text"},
	{Ext: "ods", MIME: "application/vnd.oasis.opendocument.spreadsheet"},
	{Ext: "odp", MIME: "application/vnd.oasis.opendocument.presentation"},
	{Ext: "txt", MIME: "text/plain"},
}

var defaultImageMIMEs = []string{"image/jpeg", "image/png"}

// DefaultAllowedTypes returns the table used by the upload endpoint.
func DefaultAllowedTypes() AllowedTypes {
	return NewAllowedTypes(defaultEntries, defaultImageMIMEs...)
}

// NewAllowedTypes copies entries into a new table. imageMIMEs name the
// entries that are stored verbatim; every other entry is a document.
func NewAllowedTypes(entries []TypeEntry, imageMIMEs ...string) AllowedTypes {
	t := AllowedTypes{
		entries: make([]TypeEntry, 0, len(entries)),
		mimes:   make(map[string]struct{}, len(entries)),
		images:  make(map[string]struct{}, len(imageMIMEs)),
	}
	for _, e := range entries {
		e.Ext = strings.ToLower(strings.TrimSpace(e.Ext))
		e.MIME = NormalizeMIME(e.MIME)
		t.entries = append(t.entries, e)
		t.mimes[e.MIME] = struct{}{}
	}
	for _, m := range imageMIMEs {
		t.images[NormalizeMIME(m)] = struct{}{}
	}
	return t
}

// Extensions lists the allowed extensions in table order.
func (t AllowedTypes) Extensions() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Ext
	}
	return out
}

// Allows reports whether mime is a value in the table.
func (t AllowedTypes) Allows(mime string) bool {
	_, ok := t.mimes[NormalizeMIME(mime)]
	return ok
}

// IsDocument reports whether mime is allowed and not an image type.
func (t AllowedTypes) IsDocument(mime string) bool {
	mime = NormalizeMIME(mime)
	if _, ok := t.mimes[mime]; !ok {
		return false
	}
	_, image := t.images[mime]
	return !image
}

// Classify routes documents to conversion and everything else to verbatim
// storage. It is total; callers validate before classifying.
func (t AllowedTypes) Classify(mime string) Kind {
	if t.IsDocument(mime) {
		return KindDocument
	}
	return KindImage
}

// NormalizeMIME strips parameters and lower-cases a declared content type.
func NormalizeMIME(raw string) string {
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}
