// Package storage keeps uploaded document bytes on local disk under a single
// content directory, keyed by the generated filename stored in the record.
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidFilename = errors.New("invalid filename")

type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(filename string) (string, error) {
	// Stored filenames are generated server-side, but never trust them with
	// path separators anyway.
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrInvalidFilename
	}
	return filepath.Join(s.dir, filename), nil
}

func (s *FileStore) Save(filename string, r io.Reader) (int64, error) {
	path, err := s.path(filename)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return written, nil
}

func (s *FileStore) Open(filename string) (*os.File, error) {
	path, err := s.path(filename)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove is idempotent: a missing file is not an error.
func (s *FileStore) Remove(filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) Exists(filename string) bool {
	path, err := s.path(filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
