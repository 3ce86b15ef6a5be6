package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps files under a root directory (MEDIA_ROOT style).
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) resolve(objectName string) (string, error) {
	clean := filepath.Clean("/" + objectName)
	if strings.Contains(objectName, "..") {
		return "", errors.New("invalid object name")
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStore) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	path, err := s.resolve(objectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *LocalStore) Open(ctx context.Context, storedPath string) (io.ReadCloser, error) {
	path, err := s.resolve(storedPath)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}
