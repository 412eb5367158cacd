package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// Local extracts text in-process. It covers PDF, DOCX and plain text; any
// other document type fails with ErrConversion.
type Local struct{}

// NewLocal returns an in-process converter.
func NewLocal() *Local {
	return &Local{}
}

// Convert extracts doc's text and returns it as Markdown.
func (l *Local) Convert(ctx context.Context, doc Document) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	var (
		text string
		err  error
	)
	switch mime := normalizeMime(doc.MimeType); mime {
	case mimePDF:
		text, err = extractPDF(doc.Data)
	case mimeDOCX:
		text, err = extractDOCX(doc.Data)
	case mimeText:
		text = string(doc.Data)
	default:
		err = fmt.Errorf("unsupported mime type: %s", mime)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrConversion, doc.Filename, err)
	}

	return Result{
		Markdown: text,
		Filename: MarkdownFilename(doc.Filename),
		Source:   SourceExtracted,
	}, nil
}

func normalizeMime(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return paragraphsFromXML(raw), nil
}

// paragraphsFromXML keeps character data and turns paragraph and line breaks
// into blank-line separated Markdown paragraphs.
func paragraphsFromXML(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var (
		paragraphs []string
		current    strings.Builder
	)
	flush := func() {
		if p := strings.TrimSpace(current.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return strings.TrimSpace(string(raw))
		}
		switch t := tok.(type) {
		case xml.CharData:
			current.Write(t)
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				flush()
			case "br":
				current.WriteString("\n")
			}
		}
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}
