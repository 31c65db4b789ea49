// Package storage persists uploaded images under generated names and is the
// only code allowed to touch the storage root. Every read and delete goes
// through a path-containment check first.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"time"
)

// PublicPathPrefix is the URL path stored images are served from.
const PublicPathPrefix = "/uploads/"

// namePrefix mirrors the multipart field name files arrive under, so stored
// names read fieldname-timestamp-random.ext.
const namePrefix = "meusArquivos"

// ErrNotFound is returned when the named file does not exist.
var ErrNotFound = errors.New("file not found")

// ErrForbiddenPath is returned when a filename would escape the storage
// root, e.g. via "../" segments or an absolute path.
var ErrForbiddenPath = errors.New("path outside storage root")

// ImageStore persists, lists, serves and deletes uploaded images.
type ImageStore interface {
	// Save writes content under a generated collision-resistant name and
	// returns that name. It never overwrites an existing file.
	Save(ctx context.Context, content io.Reader, size int64, contentType, originalName string) (string, error)

	// List enumerates stored files with recognized image extensions in
	// lexicographic name order.
	List(ctx context.Context) ([]ImageEntry, error)

	// Open returns a reader for the named file.
	Open(ctx context.Context, filename string) (io.ReadCloser, error)

	// Delete removes the named file.
	Delete(ctx context.Context, filename string) error
}

// ImageEntry is one stored image as reported by List.
type ImageEntry struct {
	Filename string
	URL      string
}

// GenerateName builds a stored name from the current time in milliseconds, a
// random component and the original extension. The composition makes
// collisions between concurrent uploads practically impossible without any
// coordination.
func GenerateName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%d-%d%s", namePrefix, time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}

// safeFilename rejects names that could address anything but a direct child
// of the storage root.
func safeFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return name == filepath.Base(name)
}

// PublicURL returns the serving path for a stored name.
func PublicURL(filename string) string {
	return PublicPathPrefix + filename
}
