package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ingest-backend/internal/convert"
	"ingest-backend/internal/shared/metrics"
	"ingest-backend/internal/shared/storage/blob"
)

// ErrConversionFailed wraps converter failures so the handler can report
// them separately from storage problems.
var ErrConversionFailed = errors.New("conversion failed")

// documentContentType is what converted Markdown is stored as.
const documentContentType = "text"

// Converter turns a document into Markdown.
type Converter interface {
	Convert(ctx context.Context, doc convert.Document) (convert.Result, error)
}

// Upload is a parsed file part. It lives for one request.
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

// Service validates, classifies and stores uploads.
type Service struct {
	Policy    Policy
	Converter Converter
	Store     blob.Store
}

// NewService wires a service over the default policy.
func NewService(conv Converter, store blob.Store) *Service {
	return &Service{Policy: DefaultPolicy(), Converter: conv, Store: store}
}

// Ingest runs one upload through validation, classification, optional
// conversion and storage. At most one conversion and one storage call are
// made, in that order.
func (s *Service) Ingest(ctx context.Context, up Upload) (blob.Descriptor, error) {
	if err := s.Policy.Validate(FileInfo{Size: up.Size, MimeType: up.MimeType}); err != nil {
		return blob.Descriptor{}, err
	}

	switch s.Policy.Types.Classify(up.MimeType) {
	case KindDocument:
		return s.storeDocument(ctx, up)
	default:
		return s.storeImage(ctx, up)
	}
}

func (s *Service) storeDocument(ctx context.Context, up Upload) (blob.Descriptor, error) {
	if s.Converter == nil {
		return blob.Descriptor{}, fmt.Errorf("%w: no converter configured", ErrConversionFailed)
	}

	start := time.Now()
	res, err := s.Converter.Convert(ctx, convert.Document{
		Data:     up.Data,
		MimeType: NormalizeMIME(up.MimeType),
		Filename: up.Filename,
	})
	metrics.ObserveConversion(time.Since(start))
	if err != nil {
		return blob.Descriptor{}, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	desc, err := s.Store.Put(ctx, res.Filename, []byte(res.Markdown), blob.PutOptions{
		Access:      blob.AccessPublic,
		ContentType: documentContentType,
	})
	if err != nil {
		return blob.Descriptor{}, fmt.Errorf("store markdown %s: %w", res.Filename, err)
	}
	return desc, nil
}

func (s *Service) storeImage(ctx context.Context, up Upload) (blob.Descriptor, error) {
	desc, err := s.Store.Put(ctx, up.Filename, up.Data, blob.PutOptions{Access: blob.AccessPublic})
	if err != nil {
		return blob.Descriptor{}, fmt.Errorf("store image %s: %w", up.Filename, err)
	}
	return desc, nil
}
