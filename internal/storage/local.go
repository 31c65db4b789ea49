package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// LocalStore keeps uploaded images on the local filesystem under a single
// storage root.
type LocalStore struct {
	root string
}

// NewLocalStore creates the storage root if needed and returns a store
// rooted at its absolute path.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: abs}, nil
}

// Root returns the absolute storage root path.
func (s *LocalStore) Root() string {
	return s.root
}

// Save writes content under a generated name. O_EXCL guards the residual
// collision risk: a clash fails the write instead of overwriting.
func (s *LocalStore) Save(ctx context.Context, content io.Reader, size int64, contentType, originalName string) (string, error) {
	name := GenerateName(originalName)
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

// List enumerates the storage root and keeps entries with recognized image
// extensions. os.ReadDir sorts by filename, so the order is lexicographic.
func (s *LocalStore) List(ctx context.Context) ([]ImageEntry, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	images := make([]ImageEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		images = append(images, ImageEntry{Filename: name, URL: PublicURL(name)})
	}
	return images, nil
}

// Open returns a reader for the named file after the containment check.
func (s *LocalStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the named file. Concurrent deletes of the same name are
// safe: the filesystem unlink is atomic per path, so at most one call
// succeeds and the rest observe ErrNotFound.
func (s *LocalStore) Delete(ctx context.Context, filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// resolve maps a filename to an absolute path and guarantees the result
// stays inside the storage root. This runs before every read and delete.
func (s *LocalStore) resolve(filename string) (string, error) {
	if !safeFilename(filename) {
		return "", ErrForbiddenPath
	}
	path, err := filepath.Abs(filepath.Join(s.root, filename))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", ErrForbiddenPath
	}
	return path, nil
}
