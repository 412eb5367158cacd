package ingest

import (
	"errors"
	"strings"
)

// MaxFileBytes is the largest accepted upload.
const MaxFileBytes = 5 * 1024 * 1024

const (
	msgFileTooLarge   = "File size should be less than 5MB"
	msgTypeNotAllowed = "File type not allowed. Allowed types: "
	msgNoFile         = "No file uploaded"
	msgEmptyBody      = "Request body is empty"
)

var (
	ErrNoFile    = errors.New("no file uploaded")
	ErrEmptyBody = errors.New("request body is empty")
)

// ValidationError carries every rule an upload broke.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

// FileInfo is what the policy inspects.
type FileInfo struct {
	Size     int64
	MimeType string
}

// Policy is the size and type gate in front of storage.
type Policy struct {
	MaxBytes int64
	Types    AllowedTypes
}

// DefaultPolicy is the 5 MiB limit over the default allow-list.
func DefaultPolicy() Policy {
	return Policy{MaxBytes: MaxFileBytes, Types: DefaultAllowedTypes()}
}

// Validate applies both rules and reports all violations at once.
func (p Policy) Validate(f FileInfo) error {
	var problems []string
	if f.Size > p.MaxBytes {
		problems = append(problems, msgFileTooLarge)
	}
	if !p.Types.Allows(f.MimeType) {
		problems = append(problems, p.typeNotAllowed())
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (p Policy) typeNotAllowed() string {
	return msgTypeNotAllowed + strings.Join(p.Types.Extensions(), ", ")
}

func tooLarge() error {
	return &ValidationError{Problems: []string{msgFileTooLarge}}
}
