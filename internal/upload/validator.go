// Package upload enforces the admission rules for upload batches: file
// count, per-file size, and MIME type/extension agreement. A batch is
// admitted or rejected as a whole before anything is persisted.
package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultMaxFiles is the maximum number of files per upload request.
	DefaultMaxFiles = 10

	// DefaultMaxFileSize is the maximum size of a single file in bytes.
	DefaultMaxFileSize = 5 << 20
)

// ErrTooManyFiles is returned when a batch exceeds the file count limit.
var ErrTooManyFiles = errors.New("too many files in upload batch")

// FileTooLargeError identifies the offending file by its original name.
type FileTooLargeError struct {
	Name string
	Size int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file %q exceeds the size limit", e.Name)
}

// UnsupportedFileTypeError is returned when a file's declared MIME type and
// extension are not both in the allowed image sets.
type UnsupportedFileTypeError struct {
	Name string
	Mime string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("file %q has unsupported type %q", e.Name, e.Mime)
}

// FileInfo describes one file of an upload batch as declared by the client.
type FileInfo struct {
	OriginalName string
	MimeType     string
	Size         int64
}

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Validator checks upload batches against count, size and type limits.
type Validator struct {
	MaxFiles    int
	MaxFileSize int64
}

// NewValidator constructs a Validator with the given limits. Non-positive
// values fall back to the defaults.
func NewValidator(maxFiles int, maxFileSize int64) *Validator {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Validator{MaxFiles: maxFiles, MaxFileSize: maxFileSize}
}

// ValidateBatch checks the rules in order: batch count, then per-file size,
// then per-file type. The first violation wins and rejects the whole batch.
func (v *Validator) ValidateBatch(files []FileInfo) error {
	if len(files) > v.MaxFiles {
		return ErrTooManyFiles
	}

	for _, f := range files {
		if f.Size > v.MaxFileSize {
			return &FileTooLargeError{Name: f.OriginalName, Size: f.Size}
		}
	}

	for _, f := range files {
		if !AllowedType(f.MimeType, f.OriginalName) {
			return &UnsupportedFileTypeError{Name: f.OriginalName, Mime: f.MimeType}
		}
	}
	return nil
}

// AllowedType reports whether the declared MIME type and the extension
// derived from the original name are both in the allowed image sets.
func AllowedType(mimeType, originalName string) bool {
	ext := strings.ToLower(filepath.Ext(originalName))
	return allowedMimeTypes[strings.ToLower(mimeType)] && allowedExtensions[ext]
}
