package ingest

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ingest-backend/internal/shared/metrics"
	"ingest-backend/internal/shared/server/middleware"
	"ingest-backend/internal/shared/server/respond"
	"ingest-backend/internal/shared/telemetry"
)

const (
	formField = "file"

	// DefaultMaxRequestBytes caps the whole multipart body.
	DefaultMaxRequestBytes = 32 << 20

	msgConversionFailed = "Failed to convert document to markdown"
)

// Handler serves the upload endpoint.
type Handler struct {
	Svc             *Service
	MaxRequestBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxRequestBytes int64) *Handler {
	if maxRequestBytes <= 0 {
		maxRequestBytes = DefaultMaxRequestBytes
	}
	return &Handler{Svc: svc, MaxRequestBytes: maxRequestBytes}
}

// RegisterRoutes attaches the upload route. mw run before the handler,
// typically Auth and RateLimit.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.upload)
	rg.POST("/files/upload", handlers...)
}

func (h *Handler) upload(c *gin.Context) {
	up, err := h.readUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	kind := h.Svc.Policy.Types.Classify(up.MimeType)
	c.Set(middleware.UploadFilenameKey, up.Filename)
	if h.Svc.Policy.Types.Allows(up.MimeType) {
		c.Set(middleware.UploadKindKey, kind.String())
	}

	desc, err := h.Svc.Ingest(c.Request.Context(), up)
	if err != nil {
		h.fail(c, err)
		return
	}

	if kind == KindDocument {
		metrics.IncUpload(metrics.OutcomeStoredDocument)
	} else {
		metrics.IncUpload(metrics.OutcomeStoredImage)
	}
	c.Set(middleware.StoredPathKey, desc.Pathname)
	respond.OK(c, desc)
}

func (h *Handler) readUpload(c *gin.Context) (Upload, error) {
	req := c.Request
	if req.Body == nil || req.Body == http.NoBody || req.ContentLength == 0 {
		return Upload{}, ErrEmptyBody
	}

	req.Body = http.MaxBytesReader(c.Writer, req.Body, h.MaxRequestBytes)
	reader, err := req.MultipartReader()
	if err != nil {
		return Upload{}, fmt.Errorf("open multipart reader: %w", err)
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return Upload{}, ErrNoFile
		}
		if err != nil {
			if isBodyTooLarge(err) {
				return Upload{}, tooLarge()
			}
			return Upload{}, fmt.Errorf("next multipart part: %w", err)
		}
		if part.FormName() != formField || part.FileName() == "" {
			continue
		}

		mimeType := NormalizeMIME(part.Header.Get("Content-Type"))
		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			if isBodyTooLarge(err) {
				// The part header already arrived, so the type is still checked.
				return Upload{}, h.Svc.Policy.Validate(FileInfo{Size: h.Svc.Policy.MaxBytes + 1, MimeType: mimeType})
			}
			return Upload{}, fmt.Errorf("read form file: %w", err)
		}

		return Upload{
			Filename: part.FileName(),
			MimeType: mimeType,
			Size:     int64(len(data)),
			Data:     data,
		}, nil
	}
}

func isBodyTooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig)
}

// fail is the single place upload errors become responses.
func (h *Handler) fail(c *gin.Context, err error) {
	var validation *ValidationError
	switch {
	case errors.Is(err, ErrEmptyBody):
		metrics.IncUpload(metrics.OutcomeRejected)
		respond.Error(c, http.StatusBadRequest, msgEmptyBody)
	case errors.Is(err, ErrNoFile):
		metrics.IncUpload(metrics.OutcomeRejected)
		respond.Error(c, http.StatusBadRequest, msgNoFile)
	case errors.As(err, &validation):
		metrics.IncUpload(metrics.OutcomeRejected)
		respond.Error(c, http.StatusBadRequest, validation.Error())
	case errors.Is(err, ErrConversionFailed):
		metrics.IncUpload(metrics.OutcomeConversionFailed)
		telemetry.Error("ingest.convert.failed", map[string]any{
			"err":        err,
			"file_name":  c.GetString(middleware.UploadFilenameKey),
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, msgConversionFailed)
	default:
		metrics.IncUpload(metrics.OutcomeFailed)
		telemetry.Error("ingest.upload.failed", map[string]any{
			"err":        err,
			"file_name":  c.GetString(middleware.UploadFilenameKey),
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, middleware.GenericFailure)
	}
}
