// Package convert turns office documents into Markdown, either through the
// remote conversion service or in-process for development.
package convert

import (
	"errors"
	"strings"
)

// ErrConversion marks every failure to obtain Markdown for a document.
var ErrConversion = errors.New("document conversion failed")

// Document is the input to a conversion.
type Document struct {
	Data     []byte
	MimeType string
	Filename string
}

// Source records how the Markdown in a Result was obtained.
type Source int

const (
	// SourceParsed: the service answered {"markdown": "..."}.
	SourceParsed Source = iota + 1
	// SourceRawFallback: the service answered something else and the raw
	// body is used as the Markdown.
	SourceRawFallback
	// SourceExtracted: text was extracted in-process.
	SourceExtracted
)

func (s Source) String() string {
	switch s {
	case SourceParsed:
		return "parsed"
	case SourceRawFallback:
		return "raw_fallback"
	case SourceExtracted:
		return "extracted"
	default:
		return "unknown"
	}
}

// Result is a converted document ready to be stored.
type Result struct {
	Markdown string
	Filename string
	Source   Source
}

// MarkdownFilename names the stored Markdown artifact: everything before the
// first dot of the original name, plus ".md". "report.v2.docx" becomes
// "report.md".
func MarkdownFilename(filename string) string {
	return strings.Split(filename, ".")[0] + ".md"
}
