package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"ingest-backend/internal/shared/telemetry"
)

const (
	// DefaultURL is where the conversion service listens in development.
	DefaultURL = "http://localhost:8490/process_file"

	// maxErrorBody caps how much of a failed response is logged.
	maxErrorBody = 2048
)

// Remote posts documents to the conversion service.
type Remote struct {
	url    string
	client *http.Client
}

// NewRemote builds a converter for url. A zero timeout leaves the outbound
// call bounded only by the request context.
func NewRemote(url string, timeout time.Duration) *Remote {
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	return &Remote{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Convert sends doc as the "file" field of a multipart form and interprets
// the answer with ParseResponse.
func (r *Remote) Convert(ctx context.Context, doc Document) (Result, error) {
	body, contentType, err := encodeForm(doc)
	if err != nil {
		return Result{}, fmt.Errorf("%w: encode form: %v", ErrConversion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: build request: %v", ErrConversion, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		telemetry.Warn("convert.remote.status", map[string]any{
			"status":   resp.StatusCode,
			"filename": doc.Filename,
			"body":     string(snippet),
		})
		return Result{}, fmt.Errorf("%w: status %d", ErrConversion, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read body: %v", ErrConversion, err)
	}

	markdown, source := ParseResponse(raw)
	if source == SourceRawFallback {
		telemetry.Info("convert.remote.raw_fallback", map[string]any{
			"filename": doc.Filename,
			"bytes":    len(raw),
		})
	}
	return Result{
		Markdown: markdown,
		Filename: MarkdownFilename(doc.Filename),
		Source:   source,
	}, nil
}

func encodeForm(doc Document) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(doc.Filename)))
	partType := doc.MimeType
	if partType == "" {
		partType = "application/octet-stream"
	}
	header.Set("Content-Type", partType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
