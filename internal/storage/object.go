package storage

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// ObjectBackend defines common object operations across bucket backends.
type ObjectBackend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
	Bucket() string
}

// ObjectStore adapts a bucket backend to the ImageStore API. Object keys
// follow the same generated-name discipline as the local store, and the
// same filename containment rule guards reads and deletes even though
// buckets have no path traversal to defend against.
type ObjectStore struct {
	backend ObjectBackend
}

// NewObjectStore wraps the provided backend.
func NewObjectStore(backend ObjectBackend) *ObjectStore {
	return &ObjectStore{backend: backend}
}

func (s *ObjectStore) Save(ctx context.Context, content io.Reader, size int64, contentType, originalName string) (string, error) {
	name := GenerateName(originalName)
	if err := s.backend.Put(ctx, name, content, size, contentType); err != nil {
		return "", err
	}
	return name, nil
}

func (s *ObjectStore) List(ctx context.Context) ([]ImageEntry, error) {
	keys, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	images := make([]ImageEntry, 0, len(keys))
	for _, key := range keys {
		if !imageExtensions[strings.ToLower(filepath.Ext(key))] {
			continue
		}
		images = append(images, ImageEntry{Filename: key, URL: PublicURL(key)})
	}
	return images, nil
}

func (s *ObjectStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	if !safeFilename(filename) {
		return nil, ErrForbiddenPath
	}
	return s.backend.Get(ctx, filename)
}

func (s *ObjectStore) Delete(ctx context.Context, filename string) error {
	if !safeFilename(filename) {
		return ErrForbiddenPath
	}
	return s.backend.Delete(ctx, filename)
}
